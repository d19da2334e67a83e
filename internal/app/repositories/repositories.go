package repositories

import (
	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	Users         IUserRepository
	Students      IStudentRepository
	Subjects      ISubjectRepository
	Marks         IMarkRepository
	Announcements IAnnouncementRepository
	Attendance    IAttendanceRepository
	Notifications INotificationRepository
	Tokens        ITokenRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		Users:         NewUserRepository(db),
		Students:      NewStudentRepository(db),
		Subjects:      NewSubjectRepository(db),
		Marks:         NewMarkRepository(db),
		Announcements: NewAnnouncementRepository(db),
		Attendance:    NewAttendanceRepository(db),
		Notifications: NewNotificationRepository(db),
		Tokens:        NewTokenRepository(db),
	}
}

func statementBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}
