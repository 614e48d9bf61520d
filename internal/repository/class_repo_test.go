package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/vstep-go-api/internal/models"
)

func TestClassRepositoryInviteCodeUnique(t *testing.T) {
	db := openTestDB(t)
	repo := NewClassRepository(db)
	ctx := context.Background()

	first := models.Class{Name: "B1 Morning", Level: models.ClassLevelB1, Status: models.ClassStatusDraft, TeacherID: 7, MaxStudents: 30, InviteCode: "UNIQ2345"}
	require.NoError(t, repo.Create(ctx, &first))

	clash := models.Class{Name: "B1 Evening", Level: models.ClassLevelB1, Status: models.ClassStatusDraft, TeacherID: 7, MaxStudents: 30, InviteCode: "UNIQ2345"}
	err := repo.Create(ctx, &clash)
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestClassRepositoryGetByInviteCodeStatusFilter(t *testing.T) {
	db := openTestDB(t)
	repo := NewClassRepository(db)
	ctx := context.Background()

	class := models.Class{Name: "C1 Prep", Level: models.ClassLevelC1, Status: models.ClassStatusDraft, TeacherID: 7, MaxStudents: 20, InviteCode: "DRFT2345"}
	require.NoError(t, repo.Create(ctx, &class))

	_, err := repo.GetByInviteCode(ctx, "DRFT2345", models.ClassStatusActive)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	found, err := repo.GetByInviteCode(ctx, "DRFT2345")
	require.NoError(t, err)
	require.Equal(t, class.ID, found.ID)
}

func TestClassRepositoryCompleteCascadesEnrollments(t *testing.T) {
	db := openTestDB(t)
	class := seedClassAndStudents(t, db, 10, 3)
	classes := NewClassRepository(db)
	enrollments := NewEnrollmentRepository(db)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		enrollment := models.Enrollment{ClassID: class.ID, StudentID: uint(i), Status: models.EnrollmentStatusActive}
		require.NoError(t, enrollments.CreateWithCapacity(ctx, &enrollment, class.MaxStudents))
		if i == 3 {
			enrollment.Status = models.EnrollmentStatusDropped
			require.NoError(t, enrollments.Update(ctx, &enrollment))
		}
	}

	require.NoError(t, classes.CompleteWithEnrollments(ctx, &class))
	require.Equal(t, models.ClassStatusCompleted, class.Status)

	completed, total, err := enrollments.ListByClass(ctx, class.ID, EnrollmentFilter{Status: models.EnrollmentStatusCompleted})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, completed, 2)

	// Dropped rows are left untouched by the cascade.
	droppedRows, total, err := enrollments.ListByClass(ctx, class.ID, EnrollmentFilter{Status: models.EnrollmentStatusDropped})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, droppedRows, 1)
}

func TestClassRepositoryListWithFilter(t *testing.T) {
	db := openTestDB(t)
	repo := NewClassRepository(db)
	ctx := context.Background()

	seed := []models.Class{
		{Name: "VSTEP B1 Morning", Level: models.ClassLevelB1, Status: models.ClassStatusActive, TeacherID: 7, MaxStudents: 30, InviteCode: "LIST0001"},
		{Name: "VSTEP B2 Evening", Level: models.ClassLevelB2, Status: models.ClassStatusActive, TeacherID: 7, MaxStudents: 30, InviteCode: "LIST0002"},
		{Name: "IELTS Crossover", Level: models.ClassLevelB2, Status: models.ClassStatusDraft, TeacherID: 8, MaxStudents: 30, InviteCode: "LIST0003"},
	}
	for i := range seed {
		require.NoError(t, repo.Create(ctx, &seed[i]))
	}

	byStatus, total, err := repo.ListWithFilter(ctx, ClassFilter{Status: models.ClassStatusActive})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, byStatus, 2)

	bySearch, total, err := repo.ListWithFilter(ctx, ClassFilter{Search: "vstep"})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, bySearch, 2)

	byTeacher, total, err := repo.ListWithFilter(ctx, ClassFilter{TeacherID: 8})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "IELTS Crossover", byTeacher[0].Name)

	sorted, _, err := repo.ListWithFilter(ctx, ClassFilter{SortBy: "name", SortOrder: "asc"})
	require.NoError(t, err)
	require.Equal(t, "IELTS Crossover", sorted[0].Name)

	paged, total, err := repo.ListWithFilter(ctx, ClassFilter{Page: 2, Limit: 2, SortBy: "name", SortOrder: "asc"})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, paged, 1)
}

func TestClassRepositoryDeleteMissing(t *testing.T) {
	db := openTestDB(t)
	repo := NewClassRepository(db)

	err := repo.Delete(context.Background(), 4242)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
