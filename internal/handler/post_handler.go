package handler

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hitoshi/teamfinder/internal/model"
	"github.com/hitoshi/teamfinder/internal/security"
)

// PostServiceInterface は募集ハンドラーが必要とするサービスインターフェース。
type PostServiceInterface interface {
	Posts(ctx context.Context, f model.PostFilter) (*model.PostList, error)
	MyPosts(ctx context.Context) ([]model.Post, error)
	Post(ctx context.Context, id int64) (*model.Post, error)
	CreatePost(ctx context.Context, in model.PostInput) (*model.Post, error)
	UpdatePost(ctx context.Context, id int64, in model.PostInput) (*model.Post, error)
	DeletePost(ctx context.Context, id int64) error
}

// PostHandler は募集（ilan）のHTTPハンドラー。
type PostHandler struct {
	service   PostServiceInterface
	sanitizer *security.ListingSanitizer
	render    *Renderer
}

// NewPostHandler はPostHandlerを生成する。
func NewPostHandler(service PostServiceInterface, sanitizer *security.ListingSanitizer, render *Renderer) *PostHandler {
	return &PostHandler{service: service, sanitizer: sanitizer, render: render}
}

type postListData struct {
	Filter    model.PostFilter
	Posts     []model.Post
	Total     int
	Positions []string
	Prev      string
	Next      string
}

// postsPerPage は一覧の1ページあたりの件数。
const postsPerPage = 20

// ListPosts は募集一覧を絞り込み条件付きで表示する。
// GET /posts?city=&post_type=&position=&skip=
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := model.PostFilter{
		City:     strings.TrimSpace(q.Get("city")),
		PostType: model.PostType(q.Get("post_type")),
		Position: q.Get("position"),
		Limit:    postsPerPage,
	}
	if skip, err := strconv.Atoi(q.Get("skip")); err == nil && skip > 0 {
		f.Skip = skip
	}

	data := postListData{Filter: f, Positions: model.Positions}
	v := View{Title: "İlanlar", Data: &data}
	if q.Get("created") == "1" {
		v.Notice = "İlan başarıyla oluşturuldu!"
	}

	list, err := h.service.Posts(r.Context(), f)
	if err != nil {
		handleServiceError(w, r, h.render, "posts", v, err)
		return
	}

	data.Posts = h.sanitizer.Posts(list.Posts)
	data.Total = list.Total
	if f.Skip > 0 {
		data.Prev = pageLink(q, max(0, f.Skip-postsPerPage))
	}
	if f.Skip+len(list.Posts) < list.Total {
		data.Next = pageLink(q, f.Skip+postsPerPage)
	}

	h.render.Render(w, r, http.StatusOK, "posts", v)
}

// pageLink は絞り込み条件を保ったままskipを差し替えたリンクを返す。
func pageLink(q url.Values, skip int) string {
	params := url.Values{}
	for _, k := range []string{"city", "post_type", "position"} {
		if v := q.Get(k); v != "" {
			params.Set(k, v)
		}
	}
	if skip > 0 {
		params.Set("skip", strconv.Itoa(skip))
	}
	if len(params) == 0 {
		return "/posts"
	}
	return "/posts?" + params.Encode()
}

type postFormData struct {
	Action    string
	Post      model.PostInput
	Phone     string
	Email     string
	Positions []string
	Editing   bool
}

// CreatePostPage は募集作成フォームを表示する。
// GET /create-post
func (h *PostHandler) CreatePostPage(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, "post_form", View{
		Title: "Yeni İlan Ver",
		Data:  &postFormData{Action: "/create-post", Post: model.PostInput{PostType: model.PostTypeTeam}, Positions: model.Positions},
	})
}

// CreatePost は募集を作成する。
// POST /create-post
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	data := parsePostForm(r)
	data.Action = "/create-post"
	if _, err := h.service.CreatePost(r.Context(), data.Post); err != nil {
		handleServiceError(w, r, h.render, "post_form", View{Title: "Yeni İlan Ver", Data: data}, err)
		return
	}
	http.Redirect(w, r, "/posts?created=1", http.StatusSeeOther)
}

// EditPostPage は自分の募集の編集フォームを表示する。
// GET /posts/{id}/edit
func (h *PostHandler) EditPostPage(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	data := &postFormData{Action: editPostPath(id), Positions: model.Positions, Editing: true}
	v := View{Title: "İlanı Düzenle", Data: data}

	p, err := h.service.Post(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, h.render, "post_form", v, err)
		return
	}
	data.Post = model.PostInput{
		Title:           p.Title,
		Description:     p.Description,
		PostType:        p.PostType,
		City:            p.City,
		PositionsNeeded: p.PositionsNeeded,
		ContactInfo:     p.ContactInfo,
		Status:          p.Status,
	}
	data.Phone = p.ContactInfo["phone"]
	data.Email = p.ContactInfo["email"]

	h.render.Render(w, r, http.StatusOK, "post_form", v)
}

// UpdatePost は自分の募集を更新する。
// POST /posts/{id}/edit
func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	data := parsePostForm(r)
	data.Action = editPostPath(id)
	data.Editing = true
	if _, err := h.service.UpdatePost(r.Context(), id, data.Post); err != nil {
		handleServiceError(w, r, h.render, "post_form", View{Title: "İlanı Düzenle", Data: data}, err)
		return
	}
	http.Redirect(w, r, "/my-posts?updated=1", http.StatusSeeOther)
}

// MyPosts は自分の募集を表示する。
// GET /my-posts
func (h *PostHandler) MyPosts(w http.ResponseWriter, r *http.Request) {
	v := View{Title: "İlanlarım"}
	switch {
	case r.URL.Query().Get("updated") == "1":
		v.Notice = "İlan güncellendi."
	case r.URL.Query().Get("deleted") == "1":
		v.Notice = "İlan silindi."
	}

	posts, err := h.service.MyPosts(r.Context())
	if err != nil {
		handleServiceError(w, r, h.render, "my_posts", v, err)
		return
	}
	v.Data = h.sanitizer.Posts(posts)
	h.render.Render(w, r, http.StatusOK, "my_posts", v)
}

// DeletePost は自分の募集を削除する。
// POST /my-posts/{id}/delete
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := h.service.DeletePost(r.Context(), id); err != nil {
		handleServiceError(w, r, h.render, "my_posts", View{Title: "İlanlarım"}, err)
		return
	}
	http.Redirect(w, r, "/my-posts?deleted=1", http.StatusSeeOther)
}

func editPostPath(id int64) string {
	return "/posts/" + strconv.FormatInt(id, 10) + "/edit"
}

// parsePostForm はフォームの値を募集の入力に変換する。
func parsePostForm(r *http.Request) *postFormData {
	r.ParseForm()
	data := &postFormData{
		Phone:     strings.TrimSpace(r.PostFormValue("contact_phone")),
		Email:     strings.TrimSpace(r.PostFormValue("contact_email")),
		Positions: model.Positions,
	}
	data.Post = model.PostInput{
		Title:           strings.TrimSpace(r.PostFormValue("title")),
		Description:     strings.TrimSpace(r.PostFormValue("description")),
		PostType:        model.PostType(r.PostFormValue("post_type")),
		City:            strings.TrimSpace(r.PostFormValue("city")),
		PositionsNeeded: r.PostForm["positions_needed"],
		Status:          r.PostFormValue("status"),
	}
	if data.Phone != "" || data.Email != "" {
		data.Post.ContactInfo = map[string]string{"phone": data.Phone}
		if data.Email != "" {
			data.Post.ContactInfo["email"] = data.Email
		}
	}
	return data
}
