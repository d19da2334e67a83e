package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/iatracker/internal/app/analytics"
	"github.com/yigit/iatracker/internal/app/models/dto"
	"github.com/yigit/iatracker/internal/pkg/apperrors"
)

func TestSaveBatch(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	faculty := actorOf(f.faculty)

	res, err := f.services.Marks.SaveBatch(ctx, faculty, dto.BatchMarksRequest{Entries: []dto.MarkEntry{
		{StudentID: f.students[0].ID, SubjectID: f.dbms.ID, CIEType: "cie1", Marks: floatp(42)},
		{StudentID: f.students[1].ID, SubjectID: f.dbms.ID, CIEType: "CIE1", Marks: floatp(17)},
		{StudentID: 424242, SubjectID: f.dbms.ID, CIEType: "CIE1", Marks: floatp(10)},
		{StudentID: f.students[0].ID, SubjectID: 777777, CIEType: "CIE1", Marks: floatp(10)},
	}})
	require.NoError(t, err)
	assert.Equal(t, &dto.BatchMarksResult{Updated: 2, Skipped: 2}, res)

	marks, err := f.services.Marks.ForSubject(ctx, faculty, f.dbms.ID)
	require.NoError(t, err)
	require.Len(t, marks, 2)
	assert.Equal(t, "CIE1", marks[0].CIEType)
	assert.Equal(t, analytics.StatusPending, marks[0].Status)
}

func TestSaveBatchRejectsForeignSubject(t *testing.T) {
	f := newFixture()

	_, err := f.services.Marks.SaveBatch(context.Background(), actorOf(f.faculty), dto.BatchMarksRequest{Entries: []dto.MarkEntry{
		{StudentID: f.students[0].ID, SubjectID: f.networks.ID, CIEType: "CIE1", Marks: floatp(30)},
	}})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	assert.Empty(t, f.store.marks)
}

func TestMarkWorkflow(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	faculty, hod := actorOf(f.faculty), actorOf(f.hod)
	req := dto.MarkWorkflowRequest{SubjectID: f.dbms.ID, CIEType: "CIE1"}

	_, err := f.services.Marks.SaveBatch(ctx, faculty, dto.BatchMarksRequest{Entries: []dto.MarkEntry{
		{StudentID: f.students[0].ID, SubjectID: f.dbms.ID, CIEType: "CIE1", Marks: floatp(35)},
		{StudentID: f.students[1].ID, SubjectID: f.dbms.ID, CIEType: "CIE1", Marks: floatp(28)},
	}})
	require.NoError(t, err)

	submitted, err := f.services.Marks.Submit(ctx, faculty, req)
	require.NoError(t, err)
	assert.Equal(t, int64(2), submitted.Affected)
	assert.Equal(t, analytics.StatusSubmitted, submitted.Status)

	unread, err := f.services.Notifications.UnreadCount(ctx, hod)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread, "HOD is told about the submission")

	pending, err := f.services.Marks.Pending(ctx, hod, "")
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	_, err = f.services.Marks.Pending(ctx, hod, "EE")
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	approved, err := f.services.Marks.Approve(ctx, hod, req)
	require.NoError(t, err)
	assert.Equal(t, int64(2), approved.Affected)

	unread, err = f.services.Notifications.UnreadCount(ctx, faculty)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread, "instructor is told about the approval")

	res, err := f.services.Marks.SaveBatch(ctx, faculty, dto.BatchMarksRequest{Entries: []dto.MarkEntry{
		{StudentID: f.students[0].ID, SubjectID: f.dbms.ID, CIEType: "CIE1", Marks: floatp(50)},
	}})
	require.ErrorIs(t, err, apperrors.ErrMarksLocked)
	assert.Equal(t, 1, res.Locked)
	assert.Equal(t, 0, res.Updated)

	unlocked, err := f.services.Marks.Unlock(ctx, hod, req)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unlocked.Affected)

	res, err = f.services.Marks.SaveBatch(ctx, faculty, dto.BatchMarksRequest{Entries: []dto.MarkEntry{
		{StudentID: f.students[0].ID, SubjectID: f.dbms.ID, CIEType: "CIE1", Marks: floatp(50)},
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated)

	assert.Equal(t, 3, f.publisher.count())
}

func TestWorkflowAuthorization(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.services.Marks.Submit(ctx, actorOf(f.otherFaculty), dto.MarkWorkflowRequest{SubjectID: f.dbms.ID, CIEType: "CIE1"})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = f.services.Marks.Approve(ctx, actorOf(f.hod), dto.MarkWorkflowRequest{SubjectID: 31337, CIEType: "CIE1"})
	assert.ErrorIs(t, err, apperrors.ErrSubjectNotFound)

	_, err = f.services.Marks.Approve(ctx, actorOf(f.hod), dto.MarkWorkflowRequest{SubjectID: f.dbms.ID, CIEType: "final"})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	// Nothing to approve: no error, no notification.
	res, err := f.services.Marks.Approve(ctx, actorOf(f.principal), dto.MarkWorkflowRequest{SubjectID: f.dbms.ID, CIEType: "CIE3"})
	require.NoError(t, err)
	assert.Zero(t, res.Affected)
	assert.Zero(t, f.publisher.count())
}

func TestMyMarks(t *testing.T) {
	f := newFixture()
	seedMarks(f)

	marks, err := f.services.Marks.MyMarks(context.Background(), actorOf(f.studentUsers[0]))
	require.NoError(t, err)
	require.Len(t, marks, 2)
	for _, m := range marks {
		assert.Equal(t, f.students[0].ID, m.StudentID)
	}
}
