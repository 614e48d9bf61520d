package service

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/vstep-go-api/internal/models"
	"github.com/noah-isme/vstep-go-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

// fakeClassRepo keeps classes in memory and lets tests script Create errors.
type fakeClassRepo struct {
	classes       map[uint]*models.Class
	nextID        uint
	createErrs    []error
	createCalls   int
	completeCalls int
}

func newFakeClassRepo(classes ...models.Class) *fakeClassRepo {
	repo := &fakeClassRepo{classes: make(map[uint]*models.Class)}
	for i := range classes {
		class := classes[i]
		if class.ID == 0 {
			class.ID = repo.nextID + 1
		}
		if class.ID > repo.nextID {
			repo.nextID = class.ID
		}
		stored := class
		repo.classes[class.ID] = &stored
	}
	return repo
}

func (f *fakeClassRepo) ListWithFilter(ctx context.Context, filter repository.ClassFilter) ([]models.Class, int64, error) {
	out := make([]models.Class, 0, len(f.classes))
	for _, class := range f.classes {
		if filter.Status != "" && class.Status != filter.Status {
			continue
		}
		if filter.TeacherID != 0 && class.TeacherID != filter.TeacherID {
			continue
		}
		out = append(out, *class)
	}
	return out, int64(len(out)), nil
}

func (f *fakeClassRepo) GetByID(ctx context.Context, id uint) (models.Class, error) {
	class, ok := f.classes[id]
	if !ok {
		return models.Class{}, gorm.ErrRecordNotFound
	}
	return *class, nil
}

func (f *fakeClassRepo) GetByInviteCode(ctx context.Context, code string, statuses ...models.ClassStatus) (models.Class, error) {
	for _, class := range f.classes {
		if class.InviteCode != code {
			continue
		}
		if len(statuses) == 0 {
			return *class, nil
		}
		for _, status := range statuses {
			if class.Status == status {
				return *class, nil
			}
		}
	}
	return models.Class{}, gorm.ErrRecordNotFound
}

func (f *fakeClassRepo) Create(ctx context.Context, class *models.Class) error {
	f.createCalls++
	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		if err != nil {
			return err
		}
	}
	f.nextID++
	class.ID = f.nextID
	now := time.Now().UTC()
	class.CreatedAt = now
	class.UpdatedAt = now
	stored := *class
	f.classes[class.ID] = &stored
	return nil
}

func (f *fakeClassRepo) Update(ctx context.Context, class *models.Class) error {
	if _, ok := f.classes[class.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *class
	f.classes[class.ID] = &stored
	return nil
}

func (f *fakeClassRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := f.classes[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.classes, id)
	return nil
}

func (f *fakeClassRepo) CompleteWithEnrollments(ctx context.Context, class *models.Class) error {
	f.completeCalls++
	class.Status = models.ClassStatusCompleted
	return f.Update(ctx, class)
}

// memEnrollmentRepo mirrors the capacity and uniqueness semantics of the real
// repository on an in-memory map.
type memEnrollmentRepo struct {
	rows   map[uint]*models.Enrollment
	nextID uint
}

func newMemEnrollmentRepo() *memEnrollmentRepo {
	return &memEnrollmentRepo{rows: make(map[uint]*models.Enrollment)}
}

func (m *memEnrollmentRepo) seatCount(classID uint) int64 {
	var count int64
	for _, row := range m.rows {
		if row.ClassID == classID && row.CountsTowardCapacity() {
			count++
		}
	}
	return count
}

func (m *memEnrollmentRepo) ListByClass(ctx context.Context, classID uint, filter repository.EnrollmentFilter) ([]models.Enrollment, int64, error) {
	out := make([]models.Enrollment, 0)
	for _, row := range m.rows {
		if row.ClassID != classID {
			continue
		}
		if filter.Status != "" && row.Status != filter.Status {
			continue
		}
		out = append(out, *row)
	}
	return out, int64(len(out)), nil
}

func (m *memEnrollmentRepo) ListByStudent(ctx context.Context, studentID uint, statuses ...models.EnrollmentStatus) ([]models.Enrollment, error) {
	out := make([]models.Enrollment, 0)
	for _, row := range m.rows {
		if row.StudentID != studentID {
			continue
		}
		if len(statuses) > 0 {
			matched := false
			for _, status := range statuses {
				if row.Status == status {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		out = append(out, *row)
	}
	return out, nil
}

func (m *memEnrollmentRepo) GetByClassAndStudent(ctx context.Context, classID, studentID uint) (models.Enrollment, error) {
	for _, row := range m.rows {
		if row.ClassID == classID && row.StudentID == studentID {
			return *row, nil
		}
	}
	return models.Enrollment{}, gorm.ErrRecordNotFound
}

func (m *memEnrollmentRepo) GetByID(ctx context.Context, id uint) (models.Enrollment, error) {
	row, ok := m.rows[id]
	if !ok {
		return models.Enrollment{}, gorm.ErrRecordNotFound
	}
	return *row, nil
}

func (m *memEnrollmentRepo) CreateWithCapacity(ctx context.Context, enrollment *models.Enrollment, capacity int) error {
	for _, row := range m.rows {
		if row.ClassID == enrollment.ClassID && row.StudentID == enrollment.StudentID {
			return gorm.ErrDuplicatedKey
		}
	}
	if capacity > 0 && m.seatCount(enrollment.ClassID) >= int64(capacity) {
		return repository.ErrCapacityExceeded
	}
	if enrollment.JoinedAt.IsZero() {
		enrollment.JoinedAt = time.Now().UTC()
	}
	m.nextID++
	enrollment.ID = m.nextID
	stored := *enrollment
	m.rows[enrollment.ID] = &stored
	return nil
}

func (m *memEnrollmentRepo) ReactivateWithCapacity(ctx context.Context, enrollment *models.Enrollment, capacity int) error {
	if capacity > 0 && m.seatCount(enrollment.ClassID) >= int64(capacity) {
		return repository.ErrCapacityExceeded
	}
	enrollment.Status = models.EnrollmentStatusActive
	enrollment.DroppedAt = nil
	enrollment.RemovedBy = nil
	enrollment.JoinedAt = time.Now().UTC()
	stored := *enrollment
	m.rows[enrollment.ID] = &stored
	return nil
}

func (m *memEnrollmentRepo) Update(ctx context.Context, enrollment *models.Enrollment) error {
	if _, ok := m.rows[enrollment.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *enrollment
	m.rows[enrollment.ID] = &stored
	return nil
}

func (m *memEnrollmentRepo) CountSeats(ctx context.Context, classID uint) (int64, error) {
	return m.seatCount(classID), nil
}

func (m *memEnrollmentRepo) CountActive(ctx context.Context, classID uint) (int64, error) {
	var count int64
	for _, row := range m.rows {
		if row.ClassID == classID && row.Status == models.EnrollmentStatusActive {
			count++
		}
	}
	return count, nil
}

// fakeStudentRepo holds a fixed roster of students.
type fakeStudentRepo struct {
	students map[uint]models.Student
}

func newFakeStudentRepo(ids ...uint) *fakeStudentRepo {
	repo := &fakeStudentRepo{students: make(map[uint]models.Student, len(ids))}
	for _, id := range ids {
		repo.students[id] = models.Student{ID: id, Name: "Student", Email: "student@example.com"}
	}
	return repo
}

func (f *fakeStudentRepo) GetByID(ctx context.Context, id uint) (models.Student, error) {
	student, ok := f.students[id]
	if !ok {
		return models.Student{}, gorm.ErrRecordNotFound
	}
	return student, nil
}

func (f *fakeStudentRepo) ExistingIDs(ctx context.Context, ids []uint) (map[uint]bool, error) {
	existing := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if _, ok := f.students[id]; ok {
			existing[id] = true
		}
	}
	return existing, nil
}

func (f *fakeStudentRepo) Create(ctx context.Context, student *models.Student) error {
	f.students[student.ID] = *student
	return nil
}

// fakeScheduleRepo records created sessions.
type fakeScheduleRepo struct {
	schedules map[uint]*models.Schedule
	nextID    uint
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{schedules: make(map[uint]*models.Schedule)}
}

func (f *fakeScheduleRepo) ListByClass(ctx context.Context, classID uint) ([]models.Schedule, error) {
	out := make([]models.Schedule, 0)
	for _, schedule := range f.schedules {
		if schedule.ClassID == classID {
			out = append(out, *schedule)
		}
	}
	return out, nil
}

func (f *fakeScheduleRepo) GetByID(ctx context.Context, id uint) (models.Schedule, error) {
	schedule, ok := f.schedules[id]
	if !ok {
		return models.Schedule{}, gorm.ErrRecordNotFound
	}
	return *schedule, nil
}

func (f *fakeScheduleRepo) Create(ctx context.Context, schedule *models.Schedule) error {
	f.nextID++
	schedule.ID = f.nextID
	stored := *schedule
	f.schedules[schedule.ID] = &stored
	return nil
}

func (f *fakeScheduleRepo) Update(ctx context.Context, schedule *models.Schedule) error {
	if _, ok := f.schedules[schedule.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *schedule
	f.schedules[schedule.ID] = &stored
	return nil
}

func (f *fakeScheduleRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := f.schedules[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.schedules, id)
	return nil
}
