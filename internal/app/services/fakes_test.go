package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/iatracker/internal/app/analytics"
	"github.com/yigit/iatracker/internal/app/models"
	"github.com/yigit/iatracker/internal/app/repositories"
	"github.com/yigit/iatracker/internal/pkg/apperrors"
	"github.com/yigit/iatracker/internal/pkg/auth"
	"github.com/yigit/iatracker/internal/pkg/websocket"
)

// store is an in-memory stand-in for the database shared by the fake repositories.
type store struct {
	mu            sync.Mutex
	users         map[int64]*models.User
	students      map[int64]*models.Student
	subjects      map[int64]*models.Subject
	marks         []analytics.MarkRecord
	announcements map[[2]int64]*models.Announcement
	attendance    map[[3]int64]*models.Attendance
	notifications []*models.Notification
	tokens        map[string]*models.RefreshToken
	nextID        int64
}

func newStore() *store {
	return &store{
		users:         make(map[int64]*models.User),
		students:      make(map[int64]*models.Student),
		subjects:      make(map[int64]*models.Subject),
		announcements: make(map[[2]int64]*models.Announcement),
		attendance:    make(map[[3]int64]*models.Attendance),
		tokens:        make(map[string]*models.RefreshToken),
		nextID:        1000,
	}
}

func (s *store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *store) repos() *repositories.Repositories {
	return &repositories.Repositories{
		Users:         fakeUsers{s},
		Students:      fakeStudents{s},
		Subjects:      fakeSubjects{s},
		Marks:         fakeMarks{s},
		Announcements: fakeAnnouncements{s},
		Attendance:    fakeAttendance{s},
		Notifications: fakeNotifications{s},
		Tokens:        fakeTokens{s},
	}
}

func (s *store) addUser(u *models.User) *models.User {
	if u.ID == 0 {
		u.ID = s.id()
	}
	s.users[u.ID] = u
	return u
}

func (s *store) addStudent(st *models.Student) *models.Student {
	if st.ID == 0 {
		st.ID = s.id()
	}
	s.students[st.ID] = st
	return st
}

func (s *store) addSubject(sub *models.Subject) *models.Subject {
	if sub.ID == 0 {
		sub.ID = s.id()
	}
	s.subjects[sub.ID] = sub
	return sub
}

func (s *store) addMark(studentID, subjectID int64, cie string, marks float64, status analytics.MarkStatus) {
	m := marks
	s.marks = append(s.marks, analytics.MarkRecord{
		ID:        s.id(),
		StudentID: studentID,
		SubjectID: subjectID,
		CIEType:   cie,
		Marks:     &m,
		MaxMarks:  analytics.DefaultMaxMarks,
		Status:    status,
	})
}

func hasRole(roles []models.RoleType, r models.RoleType) bool {
	for _, x := range roles {
		if x == r {
			return true
		}
	}
	return false
}

type fakeUsers struct{ s *store }

func (f fakeUsers) Create(_ context.Context, u *models.User) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.addUser(u)
	return nil
}

func (f fakeUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if u, ok := f.s.users[id]; ok {
		return u, nil
	}
	return nil, apperrors.ErrUserNotFound
}

func (f fakeUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, u := range f.s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (f fakeUsers) UpdatePassword(_ context.Context, id int64, hash string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	u, ok := f.s.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.Password = hash
	return nil
}

func (f fakeUsers) ListByRoles(_ context.Context, roles []models.RoleType, department string) ([]*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*models.User
	for _, u := range f.s.users {
		if hasRole(roles, u.Role) && (department == "" || u.Department == department) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f fakeUsers) CountByRoles(ctx context.Context, roles []models.RoleType) (int, error) {
	users, _ := f.ListByRoles(ctx, roles, "")
	return len(users), nil
}

func (f fakeUsers) Search(ctx context.Context, query string, roles []models.RoleType, limit int) ([]*models.User, error) {
	users, _ := f.ListByRoles(ctx, roles, "")
	q := strings.ToLower(query)
	var out []*models.User
	for _, u := range users {
		if strings.Contains(strings.ToLower(u.FullName), q) || strings.Contains(strings.ToLower(u.Username), q) {
			out = append(out, u)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type fakeStudents struct{ s *store }

func (f fakeStudents) Create(_ context.Context, st *models.Student) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, existing := range f.s.students {
		if existing.RegNo == st.RegNo {
			return false, nil
		}
	}
	f.s.addStudent(st)
	return true, nil
}

func (f fakeStudents) GetByID(_ context.Context, id int64) (*models.Student, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if st, ok := f.s.students[id]; ok {
		return st, nil
	}
	return nil, apperrors.ErrStudentNotFound
}

func (f fakeStudents) find(match func(*models.Student) bool) (*models.Student, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, st := range f.s.students {
		if match(st) {
			return st, nil
		}
	}
	return nil, apperrors.ErrStudentNotFound
}

func (f fakeStudents) GetByRegNo(_ context.Context, regNo string) (*models.Student, error) {
	return f.find(func(st *models.Student) bool { return st.RegNo == regNo })
}

func (f fakeStudents) GetByUserID(_ context.Context, userID int64) (*models.Student, error) {
	return f.find(func(st *models.Student) bool { return st.UserID != nil && *st.UserID == userID })
}

func (f fakeStudents) List(_ context.Context, department string, semester int) ([]*models.Student, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*models.Student
	for _, st := range f.s.students {
		if (department == "" || st.Department == department) && (semester == 0 || st.Semester == semester) {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f fakeStudents) Count(ctx context.Context, department string) (int, error) {
	list, _ := f.List(ctx, department, 0)
	return len(list), nil
}

func (f fakeStudents) CountBySubjects(ctx context.Context, subjects []*models.Subject) (int, error) {
	total := 0
	for _, sub := range subjects {
		list, _ := f.List(ctx, sub.Department, sub.Semester)
		total += len(list)
	}
	return total, nil
}

func (f fakeStudents) Departments(_ context.Context) ([]string, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	set := map[string]struct{}{}
	for _, st := range f.s.students {
		set[st.Department] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	sort.Strings(out)
	return out, nil
}

func (f fakeStudents) UserIDs(ctx context.Context, department string, semester int) ([]int64, error) {
	list, _ := f.List(ctx, department, semester)
	var ids []int64
	for _, st := range list {
		if st.UserID != nil {
			ids = append(ids, *st.UserID)
		}
	}
	return ids, nil
}

func (f fakeStudents) Search(ctx context.Context, query string, limit int) ([]*models.Student, error) {
	list, _ := f.List(ctx, "", 0)
	q := strings.ToLower(query)
	out := []*models.Student{}
	for _, st := range list {
		if strings.Contains(strings.ToLower(st.Name), q) || strings.Contains(strings.ToLower(st.RegNo), q) {
			out = append(out, st)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type fakeSubjects struct{ s *store }

func (f fakeSubjects) Create(_ context.Context, sub *models.Subject) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.addSubject(sub)
	return true, nil
}

func (f fakeSubjects) GetByID(_ context.Context, id int64) (*models.Subject, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if sub, ok := f.s.subjects[id]; ok {
		return sub, nil
	}
	return nil, apperrors.ErrSubjectNotFound
}

func (f fakeSubjects) GetByCode(_ context.Context, code string) (*models.Subject, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, sub := range f.s.subjects {
		if sub.Code == code {
			return sub, nil
		}
	}
	return nil, apperrors.ErrSubjectNotFound
}

func (f fakeSubjects) List(_ context.Context, filter repositories.SubjectFilter) ([]*models.Subject, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := []*models.Subject{}
	for _, sub := range f.s.subjects {
		if filter.Department != "" && sub.Department != filter.Department {
			continue
		}
		if filter.Semester > 0 && sub.Semester != filter.Semester {
			continue
		}
		if filter.InstructorID > 0 && !sub.TaughtBy(filter.InstructorID) {
			continue
		}
		out = append(out, sub)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f fakeSubjects) AssignInstructor(_ context.Context, subjectID, instructorID int64) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	sub, ok := f.s.subjects[subjectID]
	if !ok {
		return apperrors.ErrSubjectNotFound
	}
	sub.InstructorID = &instructorID
	return nil
}

type fakeMarks struct{ s *store }

func (f fakeMarks) List(_ context.Context, filter repositories.MarkFilter) ([]analytics.MarkRecord, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := []analytics.MarkRecord{}
	for _, m := range f.s.marks {
		if filter.Department != "" {
			sub, ok := f.s.subjects[m.SubjectID]
			if !ok || sub.Department != filter.Department {
				continue
			}
		}
		if filter.SubjectIDs != nil && !containsID(filter.SubjectIDs, m.SubjectID) {
			continue
		}
		if filter.StudentID > 0 && m.StudentID != filter.StudentID {
			continue
		}
		if filter.CIEType != "" && !strings.EqualFold(filter.CIEType, m.CIEType) {
			continue
		}
		if filter.Status != "" && m.Status != filter.Status {
			continue
		}
		if sub, ok := f.s.subjects[m.SubjectID]; ok {
			m.SubjectName, m.SubjectCode = sub.Name, sub.Code
		}
		out = append(out, m)
	}
	return out, nil
}

func (f fakeMarks) UpsertBatch(_ context.Context, entries []repositories.MarkUpsert) (repositories.UpsertOutcome, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out repositories.UpsertOutcome
	for _, e := range entries {
		if _, ok := f.s.students[e.StudentID]; !ok {
			out.Skipped++
			continue
		}
		if _, ok := f.s.subjects[e.SubjectID]; !ok {
			out.Skipped++
			continue
		}
		found := false
		for i := range f.s.marks {
			m := &f.s.marks[i]
			if m.StudentID == e.StudentID && m.SubjectID == e.SubjectID && m.CIEType == e.CIEType {
				found = true
				if m.Status == analytics.StatusApproved {
					out.Locked++
				} else {
					m.Marks, m.Status = e.Marks, analytics.StatusPending
					out.Updated++
				}
			}
		}
		if !found {
			f.s.marks = append(f.s.marks, analytics.MarkRecord{
				ID: f.s.id(), StudentID: e.StudentID, SubjectID: e.SubjectID, CIEType: e.CIEType,
				Marks: e.Marks, MaxMarks: analytics.DefaultMaxMarks, Status: analytics.StatusPending,
			})
			out.Updated++
		}
	}
	return out, nil
}

func (f fakeMarks) UpdateStatus(_ context.Context, subjectID int64, cieType string, from []analytics.MarkStatus, to analytics.MarkStatus) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var n int64
	for i := range f.s.marks {
		m := &f.s.marks[i]
		if m.SubjectID != subjectID || !strings.EqualFold(m.CIEType, cieType) {
			continue
		}
		for _, st := range from {
			if m.Status == st {
				m.Status = to
				n++
				break
			}
		}
	}
	return n, nil
}

type fakeAnnouncements struct{ s *store }

func (f fakeAnnouncements) Upsert(_ context.Context, a *models.Announcement) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if a.DurationMinutes <= 0 {
		a.DurationMinutes = models.DefaultDurationMinutes
	}
	if a.Status == "" {
		a.Status = models.AnnouncementScheduled
	}
	key := [2]int64{a.SubjectID, int64(a.CIENumber)}
	if existing, ok := f.s.announcements[key]; ok {
		a.ID = existing.ID
	} else {
		a.ID = f.s.id()
	}
	f.s.announcements[key] = a
	return nil
}

func (f fakeAnnouncements) Get(_ context.Context, subjectID int64, cieNumber int) (*models.Announcement, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if a, ok := f.s.announcements[[2]int64{subjectID, int64(cieNumber)}]; ok {
		return a, nil
	}
	return nil, apperrors.ErrAnnouncementNotFound
}

func (f fakeAnnouncements) List(_ context.Context, filter repositories.AnnouncementFilter) ([]*models.Announcement, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := []*models.Announcement{}
	for _, a := range f.s.announcements {
		if filter.Department != "" && a.Department != filter.Department {
			continue
		}
		if filter.Semester > 0 && a.Semester != filter.Semester {
			continue
		}
		if filter.FacultyID > 0 && (a.FacultyID == nil || *a.FacultyID != filter.FacultyID) {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledDate.Before(out[j].ScheduledDate) })
	return out, nil
}

type fakeAttendance struct{ s *store }

func (f fakeAttendance) Record(_ context.Context, records []models.Attendance) (int, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, r := range records {
		rec := r
		if sub, ok := f.s.subjects[rec.SubjectID]; ok {
			rec.SubjectName = sub.Name
		}
		f.s.attendance[[3]int64{rec.StudentID, rec.SubjectID, rec.Date.Unix()}] = &rec
	}
	return len(records), nil
}

func (f fakeAttendance) list(match func(*models.Attendance) bool) []*models.Attendance {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := []*models.Attendance{}
	for _, a := range f.s.attendance {
		if match(a) {
			out = append(out, a)
		}
	}
	return out
}

func (f fakeAttendance) ListBySubject(_ context.Context, subjectID int64, date *time.Time) ([]*models.Attendance, error) {
	return f.list(func(a *models.Attendance) bool {
		return a.SubjectID == subjectID && (date == nil || a.Date.Equal(*date))
	}), nil
}

func (f fakeAttendance) ListByStudent(_ context.Context, studentID int64) ([]*models.Attendance, error) {
	return f.list(func(a *models.Attendance) bool { return a.StudentID == studentID }), nil
}

type fakeNotifications struct{ s *store }

func (f fakeNotifications) CreateMany(_ context.Context, batch []*models.Notification) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, n := range batch {
		n.ID = f.s.id()
		f.s.notifications = append(f.s.notifications, n)
	}
	return nil
}

func (f fakeNotifications) List(_ context.Context, userID int64, isRead *bool, limit int) ([]*models.Notification, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := []*models.Notification{}
	for _, n := range f.s.notifications {
		if n.UserID != userID || (isRead != nil && n.IsRead != *isRead) {
			continue
		}
		out = append(out, n)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f fakeNotifications) MarkRead(_ context.Context, id, userID int64) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, n := range f.s.notifications {
		if n.ID == id && n.UserID == userID {
			n.IsRead = true
			return nil
		}
	}
	return apperrors.ErrNotificationNotFound
}

func (f fakeNotifications) MarkAllRead(_ context.Context, userID int64) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var n int64
	for _, x := range f.s.notifications {
		if x.UserID == userID && !x.IsRead {
			x.IsRead = true
			n++
		}
	}
	return n, nil
}

func (f fakeNotifications) CountUnread(_ context.Context, userID int64) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var n int64
	for _, x := range f.s.notifications {
		if x.UserID == userID && !x.IsRead {
			n++
		}
	}
	return n, nil
}

type fakeTokens struct{ s *store }

func (f fakeTokens) Create(_ context.Context, token string, userID int64, expiry time.Time) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.tokens[token] = &models.RefreshToken{Token: token, UserID: userID, ExpiryDate: expiry}
	return nil
}

func (f fakeTokens) Get(_ context.Context, token string) (*models.RefreshToken, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	t, ok := f.s.tokens[token]
	switch {
	case !ok:
		return nil, apperrors.ErrTokenNotFound
	case t.IsRevoked:
		return nil, apperrors.ErrTokenRevoked
	case time.Now().After(t.ExpiryDate):
		return nil, apperrors.ErrTokenExpired
	}
	return t, nil
}

func (f fakeTokens) Revoke(_ context.Context, token string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	t, ok := f.s.tokens[token]
	if !ok || t.IsRevoked {
		return apperrors.ErrTokenInvalid
	}
	t.IsRevoked = true
	return nil
}

func (f fakeTokens) RevokeAllForUser(_ context.Context, userID int64) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, t := range f.s.tokens {
		if t.UserID == userID {
			t.IsRevoked = true
		}
	}
	return nil
}

func (f fakeTokens) CleanupExpired(_ context.Context) (int64, error) { return 0, nil }

// recordingPublisher captures pushed events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []*websocket.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e *websocket.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func containsID(ids []int64, id int64) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func int64p(v int64) *int64 { return &v }

func floatp(v float64) *float64 { return &v }

// fixture is a small college: one CS HOD, two faculty, three CS students in semester 5.
type fixture struct {
	store     *store
	services  *Services
	publisher *recordingPublisher

	principal, hod, faculty, otherFaculty *models.User
	studentUsers                          []*models.User
	students                              []*models.Student
	dbms, networks                        *models.Subject
}

func newFixture() *fixture {
	s := newStore()
	f := &fixture{store: s, publisher: &recordingPublisher{}}

	f.principal = s.addUser(&models.User{Username: "principal", FullName: "Dr. Principal", Role: models.RolePrincipal})
	f.hod = s.addUser(&models.User{Username: "hod_cs", FullName: "Dr. Head", Role: models.RoleHOD, Department: "CS"})
	f.faculty = s.addUser(&models.User{Username: "anita", FullName: "Anita Rao", Role: models.RoleFaculty, Department: "CS"})
	f.otherFaculty = s.addUser(&models.User{Username: "ravi", FullName: "Ravi Kumar", Role: models.RoleFaculty, Department: "CS"})

	for i, reg := range []string{"1CS001", "1CS002", "1CS003"} {
		u := s.addUser(&models.User{Username: reg, FullName: "Student " + reg, Role: models.RoleStudent, Department: "CS"})
		f.studentUsers = append(f.studentUsers, u)
		st := &models.Student{RegNo: reg, Name: "Student " + reg, Department: "CS", Semester: 5, Section: "A"}
		if i < 2 {
			st.UserID = int64p(u.ID)
		}
		f.students = append(f.students, s.addStudent(st))
	}

	f.dbms = s.addSubject(&models.Subject{Name: "DBMS", Code: "CS501", Department: "CS", Semester: 5, InstructorID: int64p(f.faculty.ID)})
	f.networks = s.addSubject(&models.Subject{Name: "Networks", Code: "CS502", Department: "CS", Semester: 5, InstructorID: int64p(f.otherFaculty.ID)})

	jwt := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "services-test",
		AccessTokenExp:  15 * time.Minute,
		RefreshTokenExp: time.Hour,
		TokenIssuer:     "iatracker-test",
	})
	limits := Limits{PrincipalLowPerformers: 10, FacultyLowPerformers: 100, LowMarkBound: 20, NotificationList: 50}
	f.services = NewServices(s.repos(), jwt, f.publisher, limits, zerolog.Nop())
	return f
}

func actorOf(u *models.User) Actor {
	return Actor{UserID: u.ID, Username: u.Username, Role: u.Role, Department: u.Department}
}
