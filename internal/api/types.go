package api

// Pagination はページングの情報。
type Pagination struct {
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// Page はページング付きの一覧。
type Page[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// PageQuery は一覧取得時のページ指定。0の項目は送信しない。
type PageQuery struct {
	Page    int
	PerPage int
}

// User はユーザー情報。
type User struct {
	ID        int64  `json:"id" yaml:"id"`
	Username  string `json:"username" yaml:"username"`
	Nickname  string `json:"nickname" yaml:"nickname"`
	Email     string `json:"email" yaml:"email"`
	Avatar    string `json:"avatar" yaml:"avatar,omitempty"`
	Role      int    `json:"role" yaml:"role"`
	Status    int    `json:"status" yaml:"status"`
	CreatedAt string `json:"created_at" yaml:"created_at"`
}

// AuthResponse はログイン成功時のトークンとユーザー。
type AuthResponse struct {
	Token string `json:"token" yaml:"-"`
	User  User   `json:"user" yaml:"user"`
}

// LoginRequest はログインリクエスト。
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest はユーザー登録リクエスト。
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Nickname string `json:"nickname,omitempty"`
	Email    string `json:"email,omitempty"`
}

// ProfileUpdate はプロフィール更新リクエスト。空の項目は変更されない。
type ProfileUpdate struct {
	Nickname string `json:"nickname,omitempty"`
	Email    string `json:"email,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

// Attraction は景点。
type Attraction struct {
	ID              int64   `json:"id" yaml:"id"`
	Name            string  `json:"name" yaml:"name"`
	Description     string  `json:"description" yaml:"description"`
	CoverImage      string  `json:"cover_image" yaml:"cover_image,omitempty"`
	Address         string  `json:"address" yaml:"address"`
	Longitude       float64 `json:"longitude" yaml:"longitude"`
	Latitude        float64 `json:"latitude" yaml:"latitude"`
	OpenTime        string  `json:"open_time" yaml:"open_time"`
	TicketInfo      string  `json:"ticket_info" yaml:"ticket_info"`
	LikeCount       int     `json:"like_count" yaml:"like_count"`
	CollectionCount int     `json:"collection_count" yaml:"collection_count"`
	ViewCount       int     `json:"view_count" yaml:"view_count"`
	IsHot           bool    `json:"is_hot" yaml:"is_hot"`
	CreatedAt       string  `json:"created_at" yaml:"created_at"`
	UpdatedAt       string  `json:"updated_at" yaml:"updated_at"`
}

// AttractionQuery は景点一覧の検索条件。
type AttractionQuery struct {
	PageQuery
	Keyword string
}

// AttractionInput は景点の作成・更新リクエスト。
type AttractionInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	CoverImage  string  `json:"cover_image,omitempty"`
	Address     string  `json:"address,omitempty"`
	Longitude   float64 `json:"longitude,omitempty"`
	Latitude    float64 `json:"latitude,omitempty"`
	OpenTime    string  `json:"open_time,omitempty"`
	TicketInfo  string  `json:"ticket_info,omitempty"`
	IsHot       bool    `json:"is_hot"`
}

// Note は旅行記。
type Note struct {
	ID         int64  `json:"id" yaml:"id"`
	UserID     int64  `json:"user_id" yaml:"user_id"`
	UserName   string `json:"user_name" yaml:"user_name"`
	Title      string `json:"title" yaml:"title"`
	Content    string `json:"content" yaml:"content"`
	CoverImage string `json:"cover_image" yaml:"cover_image,omitempty"`
	Location   string `json:"location" yaml:"location"`
	Views      int    `json:"views" yaml:"views"`
	Likes      int    `json:"likes" yaml:"likes"`
	Status     int    `json:"status" yaml:"status"`
	CreatedAt  string `json:"created_at" yaml:"created_at"`
}

// DashboardData は管理画面トップの集計値。
type DashboardData struct {
	UserCount       int          `json:"user_count" yaml:"user_count"`
	AttractionCount int          `json:"attraction_count" yaml:"attraction_count"`
	NoteCount       int          `json:"note_count" yaml:"note_count"`
	TotalViews      int          `json:"total_views" yaml:"total_views"`
	HotAttractions  []Attraction `json:"hot_attractions" yaml:"hot_attractions"`
}
