package mockapi

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// errNotFound は対象の行が存在しないことを表す。
var errNotFound = errors.New("見つかりません")

// User は公開用のユーザー情報。パスワードハッシュは含まない。
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Nickname  string `json:"nickname"`
	Email     string `json:"email"`
	Avatar    string `json:"avatar"`
	Role      int    `json:"role"`
	Status    int    `json:"status"`
	CreatedAt string `json:"created_at"`
}

// Attraction は景点。
type Attraction struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	CoverImage      string  `json:"cover_image"`
	Address         string  `json:"address"`
	Longitude       float64 `json:"longitude"`
	Latitude        float64 `json:"latitude"`
	OpenTime        string  `json:"open_time"`
	TicketInfo      string  `json:"ticket_info"`
	LikeCount       int     `json:"like_count"`
	CollectionCount int     `json:"collection_count"`
	ViewCount       int     `json:"view_count"`
	IsHot           bool    `json:"is_hot"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

// AttractionInput は景点の作成・更新リクエスト。
type AttractionInput struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	CoverImage  string  `json:"cover_image"`
	Address     string  `json:"address"`
	Longitude   float64 `json:"longitude"`
	Latitude    float64 `json:"latitude"`
	OpenTime    string  `json:"open_time"`
	TicketInfo  string  `json:"ticket_info"`
	IsHot       bool    `json:"is_hot"`
}

// Note は旅行記。
type Note struct {
	ID         int64  `json:"id"`
	UserID     int64  `json:"user_id"`
	UserName   string `json:"user_name"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	CoverImage string `json:"cover_image"`
	Location   string `json:"location"`
	Views      int    `json:"views"`
	Likes      int    `json:"likes"`
	Status     int    `json:"status"`
	CreatedAt  string `json:"created_at"`
}

// Pagination はページングの情報。
type Pagination struct {
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// newPagination は総件数とページ指定からPaginationを計算する。
func newPagination(total, page, perPage int) Pagination {
	totalPages := 0
	if perPage > 0 {
		totalPages = (total + perPage - 1) / perPage
	}
	return Pagination{
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// Dashboard は管理画面トップの集計値。
type Dashboard struct {
	UserCount       int          `json:"user_count"`
	AttractionCount int          `json:"attraction_count"`
	NoteCount       int          `json:"note_count"`
	TotalViews      int          `json:"total_views"`
	HotAttractions  []Attraction `json:"hot_attractions"`
}

// store はSQLiteに対するクエリをまとめたもの。
type store struct {
	db *sql.DB
}

const userColumns = `id, username, nickname, email, avatar, role, status,
	strftime('%Y-%m-%d %H:%M:%S', created_at)`

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Username, &u.Nickname, &u.Email, &u.Avatar, &u.Role, &u.Status, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// userByName はユーザー名からユーザーとパスワードハッシュを取得する。
func (s *store) userByName(ctx context.Context, username string) (*User, string, error) {
	var hash string
	var u User
	err := s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+", password_hash FROM users WHERE username = ? OR email = ?",
		username, username,
	).Scan(&u.ID, &u.Username, &u.Nickname, &u.Email, &u.Avatar, &u.Role, &u.Status, &u.CreatedAt, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", errNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("ユーザーの取得に失敗: %w", err)
	}
	return &u, hash, nil
}

// userByID はIDからユーザーを取得する。
func (s *store) userByID(ctx context.Context, id int64) (*User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗: %w", err)
	}
	return u, nil
}

// createUser はユーザーを作成する。ユーザー名が重複する場合はfalseを返す。
func (s *store) createUser(ctx context.Context, username, hash, nickname, email string) (*User, bool, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO users (username, password_hash, nickname, email) VALUES (?, ?, ?, ?) ON CONFLICT(username) DO NOTHING",
		username, hash, nickname, email,
	)
	if err != nil {
		return nil, false, fmt.Errorf("ユーザーの作成に失敗: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("作成件数の取得に失敗: %w", err)
	}
	if n == 0 {
		return nil, false, nil
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, false, fmt.Errorf("ユーザーIDの取得に失敗: %w", err)
	}
	u, err := s.userByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return u, true, nil
}

// updateProfile はプロフィールのうち空でない項目を更新する。
func (s *store) updateProfile(ctx context.Context, id int64, nickname, email, avatar string) (*User, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET
		nickname = COALESCE(NULLIF(?, ''), nickname),
		email = COALESCE(NULLIF(?, ''), email),
		avatar = COALESCE(NULLIF(?, ''), avatar)
		WHERE id = ?`, nickname, email, avatar, id)
	if err != nil {
		return nil, fmt.Errorf("プロフィールの更新に失敗: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, errNotFound
	}
	return s.userByID(ctx, id)
}

const attractionColumns = `id, name, description, cover_image, address, longitude, latitude,
	open_time, ticket_info, like_count, collection_count, view_count, is_hot,
	strftime('%Y-%m-%d %H:%M:%S', created_at), strftime('%Y-%m-%d %H:%M:%S', updated_at)`

func scanAttraction(row interface{ Scan(...any) error }) (Attraction, error) {
	var a Attraction
	err := row.Scan(&a.ID, &a.Name, &a.Description, &a.CoverImage, &a.Address, &a.Longitude, &a.Latitude,
		&a.OpenTime, &a.TicketInfo, &a.LikeCount, &a.CollectionCount, &a.ViewCount, &a.IsHot,
		&a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// listAttractions はキーワードに一致する景点をID順にページ単位で返す。
func (s *store) listAttractions(ctx context.Context, keyword string, page, perPage int) ([]Attraction, int, error) {
	where := ""
	var args []any
	if keyword = strings.TrimSpace(keyword); keyword != "" {
		where = " WHERE name LIKE ? OR description LIKE ?"
		like := "%" + keyword + "%"
		args = append(args, like, like)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM attractions"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("景点数の取得に失敗: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+attractionColumns+" FROM attractions"+where+" ORDER BY id LIMIT ? OFFSET ?",
		append(args, perPage, (page-1)*perPage)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("景点一覧の取得に失敗: %w", err)
	}
	items, err := collectAttractions(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// hotAttractions は人気の景点を閲覧数の多い順に返す。
func (s *store) hotAttractions(ctx context.Context, limit int) ([]Attraction, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+attractionColumns+" FROM attractions WHERE is_hot = 1 ORDER BY view_count DESC, id LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("人気景点の取得に失敗: %w", err)
	}
	return collectAttractions(rows)
}

func collectAttractions(rows *sql.Rows) ([]Attraction, error) {
	defer rows.Close()

	items := []Attraction{}
	for rows.Next() {
		a, err := scanAttraction(rows)
		if err != nil {
			return nil, fmt.Errorf("景点の読み取りに失敗: %w", err)
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("景点の読み取りに失敗: %w", err)
	}
	return items, nil
}

// attraction はIDから景点を取得する。
func (s *store) attraction(ctx context.Context, id int64) (*Attraction, error) {
	a, err := scanAttraction(s.db.QueryRowContext(ctx, "SELECT "+attractionColumns+" FROM attractions WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("景点の取得に失敗: %w", err)
	}
	return &a, nil
}

// incrementAttraction は景点のカウンタを1増やし、更新後の値を返す。
// columnは固定の列名のみを受け付ける。
func (s *store) incrementAttraction(ctx context.Context, id int64, column string) (int, error) {
	switch column {
	case "like_count", "collection_count", "view_count":
	default:
		return 0, fmt.Errorf("不正な列名: %s", column)
	}

	var n int
	err := s.db.QueryRowContext(ctx,
		"UPDATE attractions SET "+column+" = "+column+" + 1 WHERE id = ? RETURNING "+column, id,
	).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, errNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("景点の更新に失敗: %w", err)
	}
	return n, nil
}

// createAttraction は景点を作成する。
func (s *store) createAttraction(ctx context.Context, in AttractionInput) (*Attraction, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO attractions
		(name, description, cover_image, address, longitude, latitude, open_time, ticket_info, is_hot)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Name, in.Description, in.CoverImage, in.Address, in.Longitude, in.Latitude, in.OpenTime, in.TicketInfo, in.IsHot,
	)
	if err != nil {
		return nil, fmt.Errorf("景点の作成に失敗: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("景点IDの取得に失敗: %w", err)
	}
	return s.attraction(ctx, id)
}

// updateAttraction は景点を更新する。
func (s *store) updateAttraction(ctx context.Context, id int64, in AttractionInput) (*Attraction, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE attractions SET
		name = ?, description = ?, cover_image = ?, address = ?, longitude = ?, latitude = ?,
		open_time = ?, ticket_info = ?, is_hot = ?, updated_at = datetime('now')
		WHERE id = ?`,
		in.Name, in.Description, in.CoverImage, in.Address, in.Longitude, in.Latitude, in.OpenTime, in.TicketInfo, in.IsHot, id,
	)
	if err != nil {
		return nil, fmt.Errorf("景点の更新に失敗: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, errNotFound
	}
	return s.attraction(ctx, id)
}

// deleteAttraction は景点を削除する。
func (s *store) deleteAttraction(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM attractions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("景点の削除に失敗: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errNotFound
	}
	return nil
}

const noteColumns = `n.id, n.user_id, u.nickname, n.title, n.content, n.cover_image, n.location,
	n.views, n.likes, n.status, strftime('%Y-%m-%d %H:%M:%S', n.created_at)`

func scanNote(row interface{ Scan(...any) error }) (Note, error) {
	var n Note
	err := row.Scan(&n.ID, &n.UserID, &n.UserName, &n.Title, &n.Content, &n.CoverImage, &n.Location,
		&n.Views, &n.Likes, &n.Status, &n.CreatedAt)
	return n, err
}

// listNotes は公開中の旅行記を新しい順にページ単位で返す。
func (s *store) listNotes(ctx context.Context, page, perPage int) ([]Note, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM notes WHERE status = 1").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("旅行記数の取得に失敗: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+noteColumns+" FROM notes n JOIN users u ON u.id = n.user_id WHERE n.status = 1 ORDER BY n.id DESC LIMIT ? OFFSET ?",
		perPage, (page-1)*perPage,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("旅行記一覧の取得に失敗: %w", err)
	}
	defer rows.Close()

	items := []Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("旅行記の読み取りに失敗: %w", err)
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("旅行記の読み取りに失敗: %w", err)
	}
	return items, total, nil
}

// note はIDから公開中の旅行記を取得し、閲覧数を1増やす。
func (s *store) note(ctx context.Context, id int64) (*Note, error) {
	res, err := s.db.ExecContext(ctx, "UPDATE notes SET views = views + 1 WHERE id = ? AND status = 1", id)
	if err != nil {
		return nil, fmt.Errorf("旅行記の更新に失敗: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, errNotFound
	}

	n, err := scanNote(s.db.QueryRowContext(ctx,
		"SELECT "+noteColumns+" FROM notes n JOIN users u ON u.id = n.user_id WHERE n.id = ?", id))
	if err != nil {
		return nil, fmt.Errorf("旅行記の取得に失敗: %w", err)
	}
	return &n, nil
}

// dashboard は管理画面トップの集計値を返す。
func (s *store) dashboard(ctx context.Context) (*Dashboard, error) {
	var d Dashboard
	err := s.db.QueryRowContext(ctx, `SELECT
		(SELECT COUNT(*) FROM users),
		(SELECT COUNT(*) FROM attractions),
		(SELECT COUNT(*) FROM notes),
		(SELECT COALESCE(SUM(view_count), 0) FROM attractions)`,
	).Scan(&d.UserCount, &d.AttractionCount, &d.NoteCount, &d.TotalViews)
	if err != nil {
		return nil, fmt.Errorf("集計に失敗: %w", err)
	}

	hot, err := s.hotAttractions(ctx, 5)
	if err != nil {
		return nil, err
	}
	d.HotAttractions = hot
	return &d, nil
}
