package repository

import (
	"context"
	"testing"

	"anoa.com/studyhub/internal/entity"
	"anoa.com/studyhub/pkg/database/dbtest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubRoom(rec *dbtest.Recorder, maxMembers int) {
	rec.Stub(`FROM "study_rooms"`, 1, func(dest any) {
		dest.(*entity.StudyRoom).MaxMembers = maxMembers
	})
}

func stubCounts(rec *dbtest.Recorder, existing, total int64) {
	// The membership lookup also mentions study_room_members, so it goes first.
	rec.Stub("AND user_id", existing, func(dest any) { *dest.(*int64) = existing })
	rec.Stub(`count(*) FROM "study_room_members"`, total, func(dest any) { *dest.(*int64) = total })
}

func TestCreateWithOwnerAddsAdminMembership(t *testing.T) {
	db, rec := dbtest.New(t)
	ownerID := uuid.New()
	room := &entity.StudyRoom{Name: "Graphs", MaxMembers: 5, RoomCode: "ABC123", OwnerID: ownerID}

	require.NoError(t, NewStudyRoomRepository(db).CreateWithOwner(context.Background(), room))
	require.NotEqual(t, uuid.Nil, room.ID)

	stmts := rec.Statements()
	require.Len(t, stmts, 2)
	assert.Contains(t, stmts[0], `INSERT INTO "study_rooms"`)
	assert.Contains(t, stmts[1], `INSERT INTO "study_room_members"`)
	assert.Contains(t, stmts[1], room.ID.String())
	assert.Contains(t, stmts[1], ownerID.String())
	assert.Contains(t, stmts[1], "'ADMIN'")
}

func TestAddMember(t *testing.T) {
	roomID, userID := uuid.New(), uuid.New()

	t.Run("joins with room locked", func(t *testing.T) {
		db, rec := dbtest.New(t)
		stubRoom(rec, 3)
		stubCounts(rec, 0, 2)

		require.NoError(t, NewStudyRoomRepository(db).AddMember(context.Background(), roomID, userID, entity.MemberRoleMember))

		stmts := rec.Statements()
		require.Len(t, stmts, 4)
		assert.Contains(t, stmts[0], `FROM "study_rooms"`)
		assert.Contains(t, stmts[0], "FOR UPDATE")
		assert.Contains(t, stmts[1], "AND user_id")
		assert.Contains(t, stmts[2], `count(*) FROM "study_room_members"`)
		assert.Contains(t, stmts[3], `INSERT INTO "study_room_members"`)
		assert.Contains(t, stmts[3], userID.String())
	})

	t.Run("full room inserts nothing", func(t *testing.T) {
		db, rec := dbtest.New(t)
		stubRoom(rec, 2)
		stubCounts(rec, 0, 2)

		err := NewStudyRoomRepository(db).AddMember(context.Background(), roomID, userID, entity.MemberRoleMember)
		assert.ErrorIs(t, err, ErrRoomFull)
		assert.Equal(t, -1, rec.Index("INSERT INTO"))
	})

	t.Run("existing member", func(t *testing.T) {
		db, rec := dbtest.New(t)
		stubRoom(rec, 10)
		stubCounts(rec, 1, 1)

		err := NewStudyRoomRepository(db).AddMember(context.Background(), roomID, userID, entity.MemberRoleMember)
		assert.ErrorIs(t, err, ErrAlreadyMember)
		assert.Equal(t, -1, rec.Index("INSERT INTO"))
	})
}

func TestAcceptInvitation(t *testing.T) {
	invitationID, roomID, receiverID := uuid.New(), uuid.New(), uuid.New()

	stubInvitation := func(rec *dbtest.Recorder, status string) {
		rec.Stub(`FROM "study_room_invitations"`, 1, func(dest any) {
			*dest.(*entity.StudyRoomInvitation) = entity.StudyRoomInvitation{
				ID:          invitationID,
				StudyRoomID: roomID,
				SenderID:    uuid.New(),
				ReceiverID:  receiverID,
				Status:      status,
			}
		})
	}

	t.Run("adds member then marks accepted", func(t *testing.T) {
		db, rec := dbtest.New(t)
		stubInvitation(rec, entity.InvitationPending)
		stubRoom(rec, 4)
		stubCounts(rec, 0, 1)

		require.NoError(t, NewStudyRoomRepository(db).AcceptInvitation(context.Background(), invitationID))

		lock := rec.Index(`FROM "study_room_invitations"`)
		insert := rec.Index(`INSERT INTO "study_room_members"`)
		accept := rec.Index(`UPDATE "study_room_invitations"`)
		require.NotEqual(t, -1, lock)
		require.NotEqual(t, -1, insert)
		require.NotEqual(t, -1, accept)
		assert.Less(t, lock, insert)
		assert.Less(t, insert, accept)

		stmts := rec.Statements()
		assert.Contains(t, stmts[lock], "FOR UPDATE")
		assert.Contains(t, stmts[insert], receiverID.String())
		assert.Contains(t, stmts[insert], "'MEMBER'")
		assert.Contains(t, stmts[accept], `"status"='ACCEPTED'`)
		assert.Contains(t, stmts[accept], invitationID.String())
	})

	t.Run("already a member still accepts", func(t *testing.T) {
		db, rec := dbtest.New(t)
		stubInvitation(rec, entity.InvitationPending)
		stubRoom(rec, 4)
		stubCounts(rec, 1, 2)

		require.NoError(t, NewStudyRoomRepository(db).AcceptInvitation(context.Background(), invitationID))
		assert.Equal(t, -1, rec.Index("INSERT INTO"))
		assert.NotEqual(t, -1, rec.Index(`UPDATE "study_room_invitations"`))
	})

	t.Run("full room leaves invitation pending", func(t *testing.T) {
		db, rec := dbtest.New(t)
		stubInvitation(rec, entity.InvitationPending)
		stubRoom(rec, 2)
		stubCounts(rec, 0, 2)

		err := NewStudyRoomRepository(db).AcceptInvitation(context.Background(), invitationID)
		assert.ErrorIs(t, err, ErrRoomFull)
		assert.Equal(t, -1, rec.Index(`UPDATE "study_room_invitations"`))
	})

	t.Run("answered invitation", func(t *testing.T) {
		db, rec := dbtest.New(t)
		stubInvitation(rec, entity.InvitationDeclined)

		err := NewStudyRoomRepository(db).AcceptInvitation(context.Background(), invitationID)
		assert.ErrorIs(t, err, ErrInvitationClosed)
		assert.Len(t, rec.Statements(), 1)
	})
}
