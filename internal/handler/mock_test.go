package handler

import (
	"context"
	"net/url"

	"github.com/hitoshi/teamfinder/internal/admin"
	"github.com/hitoshi/teamfinder/internal/model"
	"github.com/hitoshi/teamfinder/internal/oauth"
	"github.com/hitoshi/teamfinder/internal/session"
)

// --- モック定義 ---

type mockAccount struct {
	loginRedirectFn func() session.ExternalRedirect
	loginFn         func(ctx context.Context, email, password string) (*model.User, error)
	registerFn      func(ctx context.Context, name, email, password string) (*model.User, error)
	logoutFn        func(ctx context.Context) error
	verifyFn        func(ctx context.Context, token string) error

	profileFn       func(ctx context.Context) (*model.User, error)
	updateProfileFn func(ctx context.Context, update model.ProfileUpdate) (*model.User, error)
	searchUsersFn   func(ctx context.Context, city, position string) ([]model.User, error)

	postsFn      func(ctx context.Context, f model.PostFilter) (*model.PostList, error)
	myPostsFn    func(ctx context.Context) ([]model.Post, error)
	postFn       func(ctx context.Context, id int64) (*model.Post, error)
	createPostFn func(ctx context.Context, in model.PostInput) (*model.Post, error)
	updatePostFn func(ctx context.Context, id int64, in model.PostInput) (*model.Post, error)
	deletePostFn func(ctx context.Context, id int64) error

	lineupsFn      func(ctx context.Context) (*model.LineupList, error)
	lineupFn       func(ctx context.Context, id int64) (*model.Lineup, error)
	createLineupFn func(ctx context.Context, in model.LineupInput) (*model.Lineup, error)
	updateLineupFn func(ctx context.Context, id int64, in model.LineupInput) (*model.Lineup, error)
	deleteLineupFn func(ctx context.Context, id int64) error
}

func (m *mockAccount) LoginRedirect() session.ExternalRedirect {
	if m.loginRedirectFn != nil {
		return m.loginRedirectFn()
	}
	return session.ExternalRedirect{URL: "http://api.test/auth/google/login"}
}

func (m *mockAccount) Login(ctx context.Context, email, password string) (*model.User, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, email, password)
	}
	return &model.User{ID: 1, Email: email}, nil
}

func (m *mockAccount) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, name, email, password)
	}
	return &model.User{ID: 1, Name: name, Email: email}, nil
}

func (m *mockAccount) Logout(ctx context.Context) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx)
	}
	return nil
}

func (m *mockAccount) Verify(ctx context.Context, token string) error {
	if m.verifyFn != nil {
		return m.verifyFn(ctx, token)
	}
	return nil
}

func (m *mockAccount) Profile(ctx context.Context) (*model.User, error) {
	if m.profileFn != nil {
		return m.profileFn(ctx)
	}
	return &model.User{ID: 1}, nil
}

func (m *mockAccount) UpdateProfile(ctx context.Context, update model.ProfileUpdate) (*model.User, error) {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(ctx, update)
	}
	return &model.User{ID: 1}, nil
}

func (m *mockAccount) SearchUsers(ctx context.Context, city, position string) ([]model.User, error) {
	if m.searchUsersFn != nil {
		return m.searchUsersFn(ctx, city, position)
	}
	return nil, nil
}

func (m *mockAccount) Posts(ctx context.Context, f model.PostFilter) (*model.PostList, error) {
	if m.postsFn != nil {
		return m.postsFn(ctx, f)
	}
	return &model.PostList{}, nil
}

func (m *mockAccount) MyPosts(ctx context.Context) ([]model.Post, error) {
	if m.myPostsFn != nil {
		return m.myPostsFn(ctx)
	}
	return nil, nil
}

func (m *mockAccount) Post(ctx context.Context, id int64) (*model.Post, error) {
	if m.postFn != nil {
		return m.postFn(ctx, id)
	}
	return &model.Post{ID: id}, nil
}

func (m *mockAccount) CreatePost(ctx context.Context, in model.PostInput) (*model.Post, error) {
	if m.createPostFn != nil {
		return m.createPostFn(ctx, in)
	}
	return &model.Post{ID: 1}, nil
}

func (m *mockAccount) UpdatePost(ctx context.Context, id int64, in model.PostInput) (*model.Post, error) {
	if m.updatePostFn != nil {
		return m.updatePostFn(ctx, id, in)
	}
	return &model.Post{ID: id}, nil
}

func (m *mockAccount) DeletePost(ctx context.Context, id int64) error {
	if m.deletePostFn != nil {
		return m.deletePostFn(ctx, id)
	}
	return nil
}

func (m *mockAccount) Lineups(ctx context.Context) (*model.LineupList, error) {
	if m.lineupsFn != nil {
		return m.lineupsFn(ctx)
	}
	return &model.LineupList{}, nil
}

func (m *mockAccount) Lineup(ctx context.Context, id int64) (*model.Lineup, error) {
	if m.lineupFn != nil {
		return m.lineupFn(ctx, id)
	}
	return &model.Lineup{ID: id}, nil
}

func (m *mockAccount) CreateLineup(ctx context.Context, in model.LineupInput) (*model.Lineup, error) {
	if m.createLineupFn != nil {
		return m.createLineupFn(ctx, in)
	}
	return &model.Lineup{ID: 1}, nil
}

func (m *mockAccount) UpdateLineup(ctx context.Context, id int64, in model.LineupInput) (*model.Lineup, error) {
	if m.updateLineupFn != nil {
		return m.updateLineupFn(ctx, id, in)
	}
	return &model.Lineup{ID: id}, nil
}

func (m *mockAccount) DeleteLineup(ctx context.Context, id int64) error {
	if m.deleteLineupFn != nil {
		return m.deleteLineupFn(ctx, id)
	}
	return nil
}

type mockCompleter struct {
	completeFn func(ctx context.Context, params url.Values) (*oauth.Result, error)
}

func (m *mockCompleter) Complete(ctx context.Context, params url.Values) (*oauth.Result, error) {
	if m.completeFn != nil {
		return m.completeFn(ctx, params)
	}
	return &oauth.Result{User: model.User{ID: 1}}, nil
}

type mockAdmin struct {
	loginFn      func(ctx context.Context, email, password string) (*model.AdminUser, error)
	logoutFn     func(ctx context.Context) error
	dashboardFn  func(ctx context.Context) (*admin.Dashboard, error)
	deleteUserFn func(ctx context.Context, id int64) error
	deletePostFn func(ctx context.Context, id int64) error
}

func (m *mockAdmin) Login(ctx context.Context, email, password string) (*model.AdminUser, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, email, password)
	}
	return &model.AdminUser{ID: 1, Email: email}, nil
}

func (m *mockAdmin) Logout(ctx context.Context) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx)
	}
	return nil
}

func (m *mockAdmin) Dashboard(ctx context.Context) (*admin.Dashboard, error) {
	if m.dashboardFn != nil {
		return m.dashboardFn(ctx)
	}
	return &admin.Dashboard{}, nil
}

func (m *mockAdmin) DeleteUser(ctx context.Context, id int64) error {
	if m.deleteUserFn != nil {
		return m.deleteUserFn(ctx, id)
	}
	return nil
}

func (m *mockAdmin) DeletePost(ctx context.Context, id int64) error {
	if m.deletePostFn != nil {
		return m.deletePostFn(ctx, id)
	}
	return nil
}
