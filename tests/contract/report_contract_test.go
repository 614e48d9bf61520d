package contract_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/vstep-go-api/internal/dto"
	"github.com/noah-isme/vstep-go-api/internal/handler"
)

type stubReportService struct {
	overview    dto.OverviewResponse
	classReport dto.ClassReportResponse
}

func (s stubReportService) Overview(context.Context) (dto.OverviewResponse, error) {
	return s.overview, nil
}

func (s stubReportService) ClassReport(context.Context, uint) (dto.ClassReportResponse, error) {
	return s.classReport, nil
}

func compileSchema(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()
	schemaPath, err := filepath.Abs(filepath.Join("..", "contracts", name))
	require.NoError(t, err)

	schema, err := jsonschema.NewCompiler().Compile("file://" + schemaPath)
	require.NoError(t, err)
	return schema
}

func validateResponse(t *testing.T, resp *http.Response, schema *jsonschema.Schema) {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload))
}

func TestOverviewReportContract(t *testing.T) {
	schema := compileSchema(t, "overview_report.schema.json")

	serviceStub := stubReportService{
		overview: dto.OverviewResponse{
			TotalClasses:        4,
			ClassesByStatus:     map[string]int64{"active": 3, "draft": 1},
			ClassesByLevel:      map[string]int64{"B1": 2, "B2": 2},
			TotalStudents:       52,
			TotalEnrollments:    60,
			EnrollmentsByStatus: map[string]int64{"active": 48, "dropped": 12},
			AverageProgress:     41.7,
			CompletionRate:      41.7,
			CacheHit:            false,
		},
	}
	reportHandler := handler.NewReportHandler(serviceStub, zerolog.Nop())

	app := fiber.New()
	reportHandler.Register(app.Group("/api/admin/reports"))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/reports/overview", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	validateResponse(t, resp, schema)
}

func TestClassReportContract(t *testing.T) {
	schema := compileSchema(t, "class_report.schema.json")

	serviceStub := stubReportService{
		classReport: dto.ClassReportResponse{
			ClassID:         3,
			Name:            "VSTEP B2 Evening",
			Level:           "B2",
			Status:          "active",
			TeacherID:       7,
			Enrolled:        18,
			MaxStudents:     30,
			AverageProgress: 62.5,
			AttendanceRate:  87.5,
		},
	}
	reportHandler := handler.NewReportHandler(serviceStub, zerolog.Nop())

	app := fiber.New()
	reportHandler.Register(app.Group("/api/admin/reports"))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/reports/classes/3", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	validateResponse(t, resp, schema)
}
