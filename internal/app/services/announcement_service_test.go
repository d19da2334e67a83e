package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/iatracker/internal/app/models"
	"github.com/yigit/iatracker/internal/app/models/dto"
	"github.com/yigit/iatracker/internal/pkg/apperrors"
)

func TestSaveAnnouncement(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	faculty := actorOf(f.faculty)

	a, err := f.services.Announcements.Save(ctx, faculty, dto.AnnouncementRequest{
		SubjectID:     f.dbms.ID,
		CIENumber:     2,
		ScheduledDate: "2026-11-03",
		StartTime:     "10:00",
		ExamRoom:      "LH-2",
	})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultDurationMinutes, a.DurationMinutes)
	assert.Equal(t, models.AnnouncementScheduled, a.Status)

	// Only the two students with linked accounts can be notified.
	assert.Equal(t, 2, f.publisher.count())

	again, err := f.services.Announcements.Save(ctx, faculty, dto.AnnouncementRequest{
		SubjectID:       f.dbms.ID,
		CIENumber:       2,
		ScheduledDate:   "2026-11-05",
		DurationMinutes: 90,
	})
	require.NoError(t, err)
	assert.Equal(t, a.ID, again.ID, "same subject and CIE number replaces the announcement")
	assert.Len(t, f.store.announcements, 1)

	_, err = f.services.Announcements.Save(ctx, faculty, dto.AnnouncementRequest{SubjectID: f.networks.ID, CIENumber: 1, ScheduledDate: "2026-11-03"})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = f.services.Announcements.Save(ctx, faculty, dto.AnnouncementRequest{SubjectID: f.dbms.ID, CIENumber: 1, ScheduledDate: "03/11/2026"})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = f.services.Announcements.Save(ctx, actorOf(f.hod), dto.AnnouncementRequest{CIENumber: 1, ScheduledDate: "2026-11-03"})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestAnnouncementListings(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	for _, req := range []dto.AnnouncementRequest{
		{SubjectID: f.dbms.ID, CIENumber: 1, ScheduledDate: "2026-11-10"},
		{SubjectID: f.dbms.ID, CIENumber: 2, ScheduledDate: "2026-10-01", Status: "COMPLETED"},
	} {
		_, err := f.services.Announcements.Save(ctx, actorOf(f.faculty), req)
		require.NoError(t, err)
	}
	_, err := f.services.Announcements.Save(ctx, actorOf(f.hod), dto.AnnouncementRequest{SubjectID: f.networks.ID, CIENumber: 1, ScheduledDate: "2026-11-02"})
	require.NoError(t, err)

	forStudent, err := f.services.Announcements.ForStudent(ctx, actorOf(f.studentUsers[0]))
	require.NoError(t, err)
	require.Len(t, forStudent, 2, "completed CIEs are hidden from students")
	assert.Equal(t, f.networks.ID, forStudent[0].SubjectID, "earliest first")

	forFaculty, err := f.services.Announcements.ForFaculty(ctx, actorOf(f.faculty))
	require.NoError(t, err)
	assert.Len(t, forFaculty, 2)

	forHOD, err := f.services.Announcements.ForHOD(ctx, actorOf(f.hod))
	require.NoError(t, err)
	assert.Len(t, forHOD, 3)

	details, err := f.services.Announcements.Details(ctx, actorOf(f.faculty), f.dbms.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, details.CIENumber)

	_, err = f.services.Announcements.Details(ctx, actorOf(f.faculty), f.dbms.ID, 4)
	assert.ErrorIs(t, err, apperrors.ErrAnnouncementNotFound)

	_, err = f.services.Announcements.Details(ctx, actorOf(f.faculty), 0, 1)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}
