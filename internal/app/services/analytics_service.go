package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/iatracker/internal/app/analytics"
	"github.com/yigit/iatracker/internal/app/models"
	"github.com/yigit/iatracker/internal/app/models/dto"
	"github.com/yigit/iatracker/internal/app/repositories"
	"github.com/yigit/iatracker/internal/pkg/apperrors"
	"golang.org/x/sync/errgroup"
)

// AnalyticsService serves the dashboards built on the aggregation engine.
// Unknown departments and subjects produce zero-valued results rather than errors.
type AnalyticsService interface {
	DepartmentStats(ctx context.Context, department string) (analytics.DepartmentSummary, error)
	DepartmentCieTrend(ctx context.Context, department string) (analytics.CieAverages, error)
	SubjectPerformance(ctx context.Context, department string) ([]analytics.SubjectPerformance, error)
	SubjectStats(ctx context.Context, subjectID int64) (analytics.CieAverages, error)
	FacultyAnalytics(ctx context.Context, actor Actor) (*dto.FacultyAnalyticsResponse, error)
	PrincipalDashboard(ctx context.Context) (*dto.PrincipalDashboardResponse, error)
	StudentDashboard(ctx context.Context, actor Actor) (*dto.StudentDashboardResponse, error)
}

type analyticsService struct {
	marks    repositories.IMarkRepository
	subjects repositories.ISubjectRepository
	students repositories.IStudentRepository
	users    repositories.IUserRepository
	limits   Limits
	logger   zerolog.Logger
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(marks repositories.IMarkRepository, subjects repositories.ISubjectRepository, students repositories.IStudentRepository, users repositories.IUserRepository, limits Limits, logger zerolog.Logger) AnalyticsService {
	if limits.LowMarkBound <= 0 {
		limits.LowMarkBound = analytics.PassThreshold
	}
	if limits.PrincipalLowPerformers <= 0 {
		limits.PrincipalLowPerformers = 10
	}
	if limits.FacultyLowPerformers <= 0 {
		limits.FacultyLowPerformers = 100
	}
	return &analyticsService{
		marks:    marks,
		subjects: subjects,
		students: students,
		users:    users,
		limits:   limits,
		logger:   logger,
	}
}

func (s *analyticsService) departmentMarks(ctx context.Context, department string) ([]analytics.MarkRecord, error) {
	department = strings.TrimSpace(department)
	if department == "" {
		return nil, apperrors.NewBadRequestError("department is required")
	}
	marks, err := s.marks.List(ctx, repositories.MarkFilter{Department: department})
	if err != nil {
		return nil, fmt.Errorf("error loading marks of %s: %w", department, err)
	}
	return marks, nil
}

func (s *analyticsService) DepartmentStats(ctx context.Context, department string) (analytics.DepartmentSummary, error) {
	marks, err := s.departmentMarks(ctx, department)
	if err != nil {
		return analytics.DepartmentSummary{}, err
	}
	return analytics.ComputeDepartmentSummary(analytics.ComputeStudentAverages(marks)), nil
}

func (s *analyticsService) DepartmentCieTrend(ctx context.Context, department string) (analytics.CieAverages, error) {
	marks, err := s.departmentMarks(ctx, department)
	if err != nil {
		return nil, err
	}
	return analytics.ComputeCieTrend(marks), nil
}

func (s *analyticsService) SubjectPerformance(ctx context.Context, department string) ([]analytics.SubjectPerformance, error) {
	var (
		subjects []*models.Subject
		marks    []analytics.MarkRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		subjects, err = s.subjects.List(gctx, repositories.SubjectFilter{Department: strings.TrimSpace(department)})
		return err
	})
	g.Go(func() error {
		var err error
		marks, err = s.departmentMarks(gctx, department)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return analytics.ComputeSubjectPerformance(models.SubjectRefs(subjects), marks), nil
}

func (s *analyticsService) SubjectStats(ctx context.Context, subjectID int64) (analytics.CieAverages, error) {
	if subjectID <= 0 {
		return nil, apperrors.NewBadRequestError("invalid subject id")
	}
	marks, err := s.marks.List(ctx, repositories.MarkFilter{SubjectIDs: []int64{subjectID}})
	if err != nil {
		return nil, fmt.Errorf("error loading marks of subject %d: %w", subjectID, err)
	}
	return analytics.ComputeSubjectTrendExact(marks), nil
}

// FacultyAnalytics summarises the classes the actor teaches. Low performers are evaluated
// marks strictly between zero and the low-mark bound.
func (s *analyticsService) FacultyAnalytics(ctx context.Context, actor Actor) (*dto.FacultyAnalyticsResponse, error) {
	subjects, err := s.subjects.List(ctx, repositories.SubjectFilter{InstructorID: actor.UserID})
	if err != nil {
		return nil, fmt.Errorf("error loading subjects of faculty %d: %w", actor.UserID, err)
	}
	if len(subjects) == 0 {
		return &dto.FacultyAnalyticsResponse{LowPerformersList: []analytics.MarkRecord{}}, nil
	}

	ids := make([]int64, 0, len(subjects))
	for _, sub := range subjects {
		ids = append(ids, sub.ID)
	}

	var (
		marks []analytics.MarkRecord
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		marks, err = s.marks.List(gctx, repositories.MarkFilter{SubjectIDs: ids})
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.students.CountBySubjects(gctx, subjects)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &dto.FacultyAnalyticsResponse{
		ClassAnalytics:    analytics.ComputeClassAnalytics(marks, total),
		LowPerformersList: analytics.ExtractLowPerformers(marks, s.limits.LowMarkBound, true, s.limits.FacultyLowPerformers),
	}, nil
}

func (s *analyticsService) PrincipalDashboard(ctx context.Context) (*dto.PrincipalDashboardResponse, error) {
	var (
		totalStudents int
		totalFaculty  int
		departments   []string
		allMarks      []analytics.MarkRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		totalStudents, err = s.students.Count(gctx, "")
		return err
	})
	g.Go(func() error {
		var err error
		totalFaculty, err = s.users.CountByRoles(gctx, []models.RoleType{models.RoleFaculty, models.RoleHOD})
		return err
	})
	g.Go(func() error {
		var err error
		departments, err = s.students.Departments(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		allMarks, err = s.marks.List(gctx, repositories.MarkFilter{})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("error loading dashboard data: %w", err)
	}

	sort.Strings(departments)
	overviews := make([]dto.DepartmentOverview, len(departments))
	dg, dctx := errgroup.WithContext(ctx)
	dg.SetLimit(4)
	for i, dept := range departments {
		dg.Go(func() error {
			summary, err := s.DepartmentStats(dctx, dept)
			if err != nil {
				return err
			}
			overviews[i] = dto.DepartmentOverview{Department: dept, DepartmentSummary: summary}
			return nil
		})
	}
	if err := dg.Wait(); err != nil {
		return nil, err
	}

	return &dto.PrincipalDashboardResponse{
		TotalStudents:    totalStudents,
		TotalFaculty:     totalFaculty,
		TotalDepartments: len(departments),
		Departments:      overviews,
		LowPerformers:    analytics.ExtractLowPerformers(allMarks, s.limits.LowMarkBound, false, s.limits.PrincipalLowPerformers),
	}, nil
}

func (s *analyticsService) StudentDashboard(ctx context.Context, actor Actor) (*dto.StudentDashboardResponse, error) {
	student, err := resolveStudent(ctx, s.students, actor)
	if err != nil {
		return nil, err
	}
	marks, err := s.marks.List(ctx, repositories.MarkFilter{StudentID: student.ID})
	if err != nil {
		return nil, fmt.Errorf("error loading marks of student %d: %w", student.ID, err)
	}

	averages := analytics.ComputeSubjectAverages(marks)
	subjectAverages := make([]dto.SubjectAverage, 0, len(averages))
	seen := make(map[int64]struct{}, len(averages))
	for _, m := range marks {
		avg, ok := averages[m.SubjectID]
		if !ok {
			continue
		}
		if _, dup := seen[m.SubjectID]; dup {
			continue
		}
		seen[m.SubjectID] = struct{}{}
		subjectAverages = append(subjectAverages, dto.SubjectAverage{
			SubjectID:   m.SubjectID,
			SubjectName: m.SubjectName,
			SubjectCode: m.SubjectCode,
			Average:     avg,
		})
	}
	sort.Slice(subjectAverages, func(i, j int) bool { return subjectAverages[i].SubjectID < subjectAverages[j].SubjectID })

	return &dto.StudentDashboardResponse{
		Student:         student,
		Marks:           marks,
		SubjectAverages: subjectAverages,
		Trend:           analytics.ComputeCieTrend(marks),
	}, nil
}
