package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"anoa.com/studyhub/internal/entity"
	"anoa.com/studyhub/internal/modules/studyroom/dto"
	"anoa.com/studyhub/internal/modules/studyroom/repository"
	"anoa.com/studyhub/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeRoomRepo struct {
	rooms       map[uuid.UUID]*entity.StudyRoom
	members     map[uuid.UUID][]entity.StudyRoomMember
	invitations map[uuid.UUID]*entity.StudyRoomInvitation
	users       map[uuid.UUID]*entity.User
	// codeCollisions makes the next n inserts fail as duplicates.
	codeCollisions int
}

func newFakeRoomRepo(users ...*entity.User) *fakeRoomRepo {
	f := &fakeRoomRepo{
		rooms:       map[uuid.UUID]*entity.StudyRoom{},
		members:     map[uuid.UUID][]entity.StudyRoomMember{},
		invitations: map[uuid.UUID]*entity.StudyRoomInvitation{},
		users:       map[uuid.UUID]*entity.User{},
	}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeRoomRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.StudyRoom, error) {
	room, ok := f.rooms[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *room
	if owner, ok := f.users[room.OwnerID]; ok {
		cp.Owner = *owner
	}
	cp.Members = nil
	for _, m := range f.members[id] {
		if u, ok := f.users[m.UserID]; ok {
			m.User = *u
		}
		cp.Members = append(cp.Members, m)
	}
	return &cp, nil
}

func (f *fakeRoomRepo) CreateWithOwner(ctx context.Context, room *entity.StudyRoom) error {
	if f.codeCollisions > 0 {
		f.codeCollisions--
		return gorm.ErrDuplicatedKey
	}
	for _, existing := range f.rooms {
		if existing.RoomCode == room.RoomCode {
			return gorm.ErrDuplicatedKey
		}
	}
	room.ID = uuid.New()
	room.CreatedAt = time.Now()
	cp := *room
	f.rooms[room.ID] = &cp
	f.members[room.ID] = []entity.StudyRoomMember{{StudyRoomID: room.ID, UserID: room.OwnerID, Role: entity.MemberRoleAdmin}}
	return nil
}

func (f *fakeRoomRepo) FindByCode(ctx context.Context, code string) (*entity.StudyRoom, error) {
	for _, room := range f.rooms {
		if room.RoomCode == code {
			cp := *room
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRoomRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]*entity.StudyRoom, map[uuid.UUID]int64, error) {
	var rooms []*entity.StudyRoom
	counts := map[uuid.UUID]int64{}
	for id, room := range f.rooms {
		if _, err := f.FindMember(ctx, id, userID); err == nil || room.OwnerID == userID {
			cp := *room
			rooms = append(rooms, &cp)
			counts[id] = int64(len(f.members[id]))
		}
	}
	return rooms, counts, nil
}

func (f *fakeRoomRepo) FindMember(ctx context.Context, roomID, userID uuid.UUID) (*entity.StudyRoomMember, error) {
	for _, m := range f.members[roomID] {
		if m.UserID == userID {
			cp := m
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRoomRepo) CountMembers(ctx context.Context, roomID uuid.UUID) (int64, error) {
	return int64(len(f.members[roomID])), nil
}

func (f *fakeRoomRepo) AddMember(ctx context.Context, roomID, userID uuid.UUID, role string) error {
	room, ok := f.rooms[roomID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if _, err := f.FindMember(ctx, roomID, userID); err == nil {
		return repository.ErrAlreadyMember
	}
	if len(f.members[roomID]) >= room.MaxMembers {
		return repository.ErrRoomFull
	}
	f.members[roomID] = append(f.members[roomID], entity.StudyRoomMember{StudyRoomID: roomID, UserID: userID, Role: role})
	return nil
}

func (f *fakeRoomRepo) RemoveMember(ctx context.Context, roomID, userID uuid.UUID) error {
	members := f.members[roomID]
	for i, m := range members {
		if m.UserID == userID {
			f.members[roomID] = append(members[:i], members[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeRoomRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.rooms[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.rooms, id)
	delete(f.members, id)
	return nil
}

func (f *fakeRoomRepo) CreateInvitation(ctx context.Context, inv *entity.StudyRoomInvitation) error {
	inv.ID = uuid.New()
	inv.CreatedAt = time.Now()
	cp := *inv
	f.invitations[inv.ID] = &cp
	return nil
}

func (f *fakeRoomRepo) HasPendingInvitation(ctx context.Context, roomID, receiverID uuid.UUID) (bool, error) {
	for _, inv := range f.invitations {
		if inv.StudyRoomID == roomID && inv.ReceiverID == receiverID && inv.Status == entity.InvitationPending {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRoomRepo) FindInvitation(ctx context.Context, id uuid.UUID) (*entity.StudyRoomInvitation, error) {
	inv, ok := f.invitations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *inv
	if room, ok := f.rooms[inv.StudyRoomID]; ok {
		cp.StudyRoom = *room
	}
	return &cp, nil
}

func (f *fakeRoomRepo) ListPendingInvitations(ctx context.Context, receiverID uuid.UUID) ([]*entity.StudyRoomInvitation, error) {
	var out []*entity.StudyRoomInvitation
	for _, inv := range f.invitations {
		if inv.ReceiverID == receiverID && inv.Status == entity.InvitationPending {
			cp := *inv
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRoomRepo) AcceptInvitation(ctx context.Context, id uuid.UUID) error {
	inv := f.invitations[id]
	if inv.Status != entity.InvitationPending {
		return repository.ErrInvitationClosed
	}
	err := f.AddMember(ctx, inv.StudyRoomID, inv.ReceiverID, entity.MemberRoleMember)
	if err != nil && !errors.Is(err, repository.ErrAlreadyMember) {
		return err
	}
	inv.Status = entity.InvitationAccepted
	return nil
}

func (f *fakeRoomRepo) DeclineInvitation(ctx context.Context, id uuid.UUID) error {
	inv := f.invitations[id]
	if inv.Status != entity.InvitationPending {
		return repository.ErrInvitationClosed
	}
	inv.Status = entity.InvitationDeclined
	return nil
}

type fakeUsers map[uuid.UUID]*entity.User

func (u fakeUsers) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	if user, ok := u[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type recordingNotifier struct {
	sent []*entity.Notification
}

func (r *recordingNotifier) Notify(ctx context.Context, n *entity.Notification) error {
	r.sent = append(r.sent, n)
	return nil
}

type fixture struct {
	svc      StudyRoomService
	repo     *fakeRoomRepo
	notifier *recordingNotifier
	owner    *entity.User
	alice    *entity.User
	bob      *entity.User
}

func newFixture() fixture {
	owner := &entity.User{ID: uuid.New(), Name: "Owner"}
	alice := &entity.User{ID: uuid.New(), Name: "Alice"}
	bob := &entity.User{ID: uuid.New(), Name: "Bob"}
	repo := newFakeRoomRepo(owner, alice, bob)
	notifier := &recordingNotifier{}
	users := fakeUsers{owner.ID: owner, alice.ID: alice, bob.ID: bob}
	svc := NewStudyRoomService(repo, users, notifier, zap.NewNop())
	return fixture{svc: svc, repo: repo, notifier: notifier, owner: owner, alice: alice, bob: bob}
}

func TestGenerateCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		code, err := generateCode()
		require.NoError(t, err)
		require.Len(t, code, codeLength)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(codeAlphabet, r), "unexpected rune %q", r)
		}
		seen[code] = true
	}
	assert.Greater(t, len(seen), 190)
}

func TestClampMaxMembers(t *testing.T) {
	tests := map[int]int{0: 10, 1: 2, -5: 2, 2: 2, 50: 50, 100: 100, 101: 100, 5000: 100}
	for in, want := range tests {
		assert.Equal(t, want, clampMaxMembers(in), "clamp(%d)", in)
	}
}

func TestCreateRoomAddsOwnerAsAdmin(t *testing.T) {
	f := newFixture()

	room, err := f.svc.CreateRoom(context.Background(), f.owner.ID, dto.CreateRoomRequest{Name: " Algorithms ", MaxMembers: 1})
	require.NoError(t, err)

	assert.Equal(t, "Algorithms", room.Name)
	assert.Equal(t, 2, room.MaxMembers)
	assert.Len(t, room.RoomCode, 6)
	assert.EqualValues(t, 1, room.MemberCount)
	require.Len(t, room.Members, 1)
	assert.Equal(t, f.owner.ID, room.Members[0].UserID)
	assert.Equal(t, entity.MemberRoleAdmin, room.Members[0].Role)
}

func TestCreateRoomRetriesCodeCollisions(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.repo.codeCollisions = maxCodeAttempts - 1
	_, err := f.svc.CreateRoom(ctx, f.owner.ID, dto.CreateRoomRequest{Name: "Lucky"})
	require.NoError(t, err)

	f.repo.codeCollisions = maxCodeAttempts
	_, err = f.svc.CreateRoom(ctx, f.owner.ID, dto.CreateRoomRequest{Name: "Unlucky"})
	assert.True(t, errors.Is(err, apperror.ErrConflict))
}

func TestJoinRoomEnforcesMembershipAndCapacity(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	room, err := f.svc.CreateRoom(ctx, f.owner.ID, dto.CreateRoomRequest{Name: "Pair", MaxMembers: 2})
	require.NoError(t, err)

	joined, err := f.svc.JoinRoom(ctx, f.alice.ID, strings.ToLower(room.RoomCode))
	require.NoError(t, err)
	assert.EqualValues(t, 2, joined.MemberCount)

	_, err = f.svc.JoinRoom(ctx, f.alice.ID, room.RoomCode)
	assert.True(t, errors.Is(err, apperror.ErrConflict))

	_, err = f.svc.JoinRoom(ctx, f.bob.ID, room.RoomCode)
	assert.True(t, errors.Is(err, apperror.ErrConflict))

	_, err = f.svc.JoinRoom(ctx, f.bob.ID, "ZZZZZZ")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestPrivateRoomVisibleToMembersOnly(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	room, err := f.svc.CreateRoom(ctx, f.owner.ID, dto.CreateRoomRequest{Name: "Secret", IsPrivate: true})
	require.NoError(t, err)

	_, err = f.svc.GetRoom(ctx, room.ID, f.alice.ID)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	_, err = f.svc.GetRoom(ctx, room.ID, f.owner.ID)
	assert.NoError(t, err)

	public, err := f.svc.CreateRoom(ctx, f.owner.ID, dto.CreateRoomRequest{Name: "Open"})
	require.NoError(t, err)
	_, err = f.svc.GetRoom(ctx, public.ID, f.alice.ID)
	assert.NoError(t, err)
}

func TestLeaveAndDeleteRoom(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	room, err := f.svc.CreateRoom(ctx, f.owner.ID, dto.CreateRoomRequest{Name: "Room"})
	require.NoError(t, err)
	_, err = f.svc.JoinRoom(ctx, f.alice.ID, room.RoomCode)
	require.NoError(t, err)

	err = f.svc.LeaveRoom(ctx, room.ID, f.owner.ID)
	assert.True(t, errors.Is(err, apperror.ErrInvalidInput))

	require.NoError(t, f.svc.LeaveRoom(ctx, room.ID, f.alice.ID))
	err = f.svc.LeaveRoom(ctx, room.ID, f.alice.ID)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	err = f.svc.DeleteRoom(ctx, room.ID, f.alice.ID)
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	require.NoError(t, f.svc.DeleteRoom(ctx, room.ID, f.owner.ID))
	_, err = f.svc.GetRoom(ctx, room.ID, f.owner.ID)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestListMyRooms(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	owned, err := f.svc.CreateRoom(ctx, f.owner.ID, dto.CreateRoomRequest{Name: "Mine"})
	require.NoError(t, err)
	_, err = f.svc.CreateRoom(ctx, f.bob.ID, dto.CreateRoomRequest{Name: "Bob's"})
	require.NoError(t, err)
	_, err = f.svc.JoinRoom(ctx, f.alice.ID, owned.RoomCode)
	require.NoError(t, err)

	rooms, err := f.svc.ListMyRooms(ctx, f.alice.ID)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, owned.ID, rooms[0].ID)
	assert.EqualValues(t, 2, rooms[0].MemberCount)
}

func TestInviteFlow(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	room, err := f.svc.CreateRoom(ctx, f.owner.ID, dto.CreateRoomRequest{Name: "Study", IsPrivate: true})
	require.NoError(t, err)

	_, err = f.svc.Invite(ctx, room.ID, f.alice.ID, f.bob.ID)
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	_, err = f.svc.Invite(ctx, room.ID, f.owner.ID, uuid.New())
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	_, err = f.svc.Invite(ctx, room.ID, f.owner.ID, f.owner.ID)
	assert.True(t, errors.Is(err, apperror.ErrInvalidInput))

	inv, err := f.svc.Invite(ctx, room.ID, f.owner.ID, f.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvitationPending, inv.Status)
	assert.Equal(t, "Study", inv.Room.Name)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, f.alice.ID, f.notifier.sent[0].UserID)
	assert.Equal(t, entity.NotificationStudyRoomInvite, f.notifier.sent[0].Type)
	assert.Contains(t, f.notifier.sent[0].Message, "Owner")

	_, err = f.svc.Invite(ctx, room.ID, f.owner.ID, f.alice.ID)
	assert.True(t, errors.Is(err, apperror.ErrConflict))

	pending, err := f.svc.ListInvitations(ctx, f.alice.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	_, err = f.svc.RespondInvitation(ctx, inv.ID, f.bob.ID, true)
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	accepted, err := f.svc.RespondInvitation(ctx, inv.ID, f.alice.ID, true)
	require.NoError(t, err)
	assert.Equal(t, entity.InvitationAccepted, accepted.Status)

	got, err := f.svc.GetRoom(ctx, room.ID, f.alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, got.MemberCount)

	_, err = f.svc.RespondInvitation(ctx, inv.ID, f.alice.ID, true)
	assert.True(t, errors.Is(err, apperror.ErrConflict))
	assert.Len(t, f.repo.members[room.ID], 2)

	_, err = f.svc.Invite(ctx, room.ID, f.owner.ID, f.alice.ID)
	assert.True(t, errors.Is(err, apperror.ErrConflict))
}

func TestDeclineInvitation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	room, err := f.svc.CreateRoom(ctx, f.owner.ID, dto.CreateRoomRequest{Name: "Study"})
	require.NoError(t, err)
	inv, err := f.svc.Invite(ctx, room.ID, f.owner.ID, f.bob.ID)
	require.NoError(t, err)

	declined, err := f.svc.RespondInvitation(ctx, inv.ID, f.bob.ID, false)
	require.NoError(t, err)
	assert.Equal(t, entity.InvitationDeclined, declined.Status)
	assert.Len(t, f.repo.members[room.ID], 1)

	pending, err := f.svc.ListInvitations(ctx, f.bob.ID)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
