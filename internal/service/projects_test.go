package service

import (
	"context"
	"testing"

	"github.com/TreasureUzoma/lettera/internal/models"
	"github.com/TreasureUzoma/lettera/internal/storage"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestCreateProject_DerivesSlug(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	ownerID := uuid.New()

	var saved *models.Project
	st.EXPECT().SaveProject(gomock.Any(), gomock.Any(), ownerID).
		DoAndReturn(func(_ context.Context, p *models.Project, _ uuid.UUID) error {
			saved = p
			return nil
		})

	project, err := svc.CreateProject(context.Background(), ownerID, "  Weekly Digest  ", "", "морнинг-дайджест")
	require.NoError(t, err)

	require.Equal(t, "Weekly Digest", project.Name)
	require.Equal(t, "weekly-digest", project.Slug)
	require.True(t, project.IsActive)
	require.Equal(t, saved.ID, project.ID)
}

func TestCreateProject_BadSlug(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	for _, slug := range []string{"-lead", "trail-", "UPPER", "под-писка", "a--b", "sp ace"} {
		_, err := svc.CreateProject(context.Background(), uuid.New(), "News", slug, "")
		require.ErrorIs(t, err, ErrInvalidSlug, "slug %q", slug)
	}
}

func TestCreateProject_EmptyName(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	_, err := svc.CreateProject(context.Background(), uuid.New(), "   ", "", "")
	require.ErrorIs(t, err, ErrInvalidName)
}

func TestCreateProject_SlugTaken(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	st.EXPECT().SaveProject(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(storage.ErrAlreadyExists)

	_, err := svc.CreateProject(context.Background(), uuid.New(), "News", "news", "")
	require.ErrorIs(t, err, ErrSlugTaken)
}

func TestUpdateProject_SlugImmutable(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	userID := uuid.New()
	project := &models.Project{ID: uuid.New(), Name: "News", Slug: "news", IsActive: true}

	st.EXPECT().ProjectBySlug(gomock.Any(), "news").Return(project, nil)
	st.EXPECT().MembershipByProjectUser(gomock.Any(), project.ID, userID).
		Return(&models.Membership{Role: models.RoleAdmin}, nil)

	var saved *models.Project
	st.EXPECT().UpdateProject(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p *models.Project) error {
			saved = p
			return nil
		})

	name := "Daily News"
	active := false
	got, err := svc.UpdateProject(context.Background(), userID, "news", &name, nil, &active)
	require.NoError(t, err)

	require.Equal(t, "Daily News", got.Name)
	require.False(t, got.IsActive)
	// Slug не меняется никаким путём обновления.
	require.Equal(t, "news", saved.Slug)
}

func TestDeleteProject_OwnerOnly(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	userID := uuid.New()
	project := &models.Project{ID: uuid.New(), Slug: "news"}

	st.EXPECT().ProjectBySlug(gomock.Any(), "news").Return(project, nil)
	st.EXPECT().MembershipByProjectUser(gomock.Any(), project.ID, userID).
		Return(&models.Membership{Role: models.RoleAdmin}, nil)

	err := svc.DeleteProject(context.Background(), userID, "news")
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestAddMember_OwnerRoleRejected(t *testing.T) {
	t.Parallel()

	// Проверка роли стоит до любых обращений к хранилищу.
	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	_, err := svc.AddMember(context.Background(), uuid.New(), "news", "ivan@example.com", models.RoleOwner)
	require.ErrorIs(t, err, ErrOwnerTransfer)

	_, err = svc.AddMember(context.Background(), uuid.New(), "news", "ivan@example.com", models.ProjectRole("root"))
	require.ErrorIs(t, err, ErrOwnerTransfer)
}

func TestAddMember_OK(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	userID := uuid.New()
	project := &models.Project{ID: uuid.New(), Slug: "news"}
	invitee := &models.User{ID: uuid.New(), Email: "ivan@example.com"}

	st.EXPECT().ProjectBySlug(gomock.Any(), "news").Return(project, nil)
	st.EXPECT().MembershipByProjectUser(gomock.Any(), project.ID, userID).
		Return(&models.Membership{Role: models.RoleOwner}, nil)
	st.EXPECT().UserByEmail(gomock.Any(), "ivan@example.com").Return(invitee, nil)
	st.EXPECT().SaveMembership(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, m *models.Membership) error {
			require.Equal(t, project.ID, m.ProjectID)
			require.Equal(t, invitee.ID, m.UserID)
			require.Equal(t, models.RoleEditor, m.Role)
			return nil
		})

	m, err := svc.AddMember(context.Background(), userID, "news", " Ivan@Example.com ", models.RoleEditor)
	require.NoError(t, err)
	require.Equal(t, invitee.ID, m.UserID)
}

func TestAddMember_UnknownInvitee(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	userID := uuid.New()
	project := &models.Project{ID: uuid.New(), Slug: "news"}

	st.EXPECT().ProjectBySlug(gomock.Any(), "news").Return(project, nil)
	st.EXPECT().MembershipByProjectUser(gomock.Any(), project.ID, userID).
		Return(&models.Membership{Role: models.RoleOwner}, nil)
	st.EXPECT().UserByEmail(gomock.Any(), "ghost@example.com").Return(nil, storage.ErrNotFound)

	_, err := svc.AddMember(context.Background(), userID, "news", "ghost@example.com", models.RoleViewer)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateMemberRole_OwnerDemotionBlocked(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	userID := uuid.New()
	ownerID := uuid.New()
	project := &models.Project{ID: uuid.New(), Slug: "news"}

	st.EXPECT().ProjectBySlug(gomock.Any(), "news").Return(project, nil)
	st.EXPECT().MembershipByProjectUser(gomock.Any(), project.ID, userID).
		Return(&models.Membership{Role: models.RoleAdmin}, nil)
	st.EXPECT().MembershipByProjectUser(gomock.Any(), project.ID, ownerID).
		Return(&models.Membership{Role: models.RoleOwner}, nil)

	err := svc.UpdateMemberRole(context.Background(), userID, "news", ownerID, models.RoleViewer)
	require.ErrorIs(t, err, ErrOwnerTransfer)
}

func TestUpdateMemberRole_AssignOwnerBlocked(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	err := svc.UpdateMemberRole(context.Background(), uuid.New(), "news", uuid.New(), models.RoleOwner)
	require.ErrorIs(t, err, ErrOwnerTransfer)
}

func TestSlugify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"Weekly Digest", "weekly-digest"},
		{"  Hello,   World!  ", "hello-world"},
		{"already-fine", "already-fine"},
		{"Ёлки и News 2024", "news-2024"},
		{"---", ""},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, slugify(tc.in), "slugify(%q)", tc.in)
	}
}
