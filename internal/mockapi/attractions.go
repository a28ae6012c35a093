package mockapi

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// handleListAttractions は景点一覧のハンドラを返す。
func (s *Server) handleListAttractions() gin.HandlerFunc {
	return func(c *gin.Context) {
		pageNo, perPage := pageQuery(c)
		items, total, err := s.store.listAttractions(c.Request.Context(), c.Query("keyword"), pageNo, perPage)
		if err != nil {
			log.Printf("[MockAPI] 景点一覧の取得エラー: %v", err)
			fail(c, http.StatusInternalServerError, "服务器内部错误")
			return
		}
		success(c, "获取数据成功", page[Attraction]{
			Items:      items,
			Pagination: newPagination(total, pageNo, perPage),
		})
	}
}

// handleHotAttractions は人気景点のハンドラを返す。
func (s *Server) handleHotAttractions() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, err := strconv.Atoi(c.DefaultQuery("limit", "6"))
		if err != nil || limit < 1 {
			limit = 6
		}
		items, err := s.store.hotAttractions(c.Request.Context(), limit)
		if err != nil {
			log.Printf("[MockAPI] 人気景点の取得エラー: %v", err)
			fail(c, http.StatusInternalServerError, "服务器内部错误")
			return
		}
		success(c, "获取成功", items)
	}
}

// handleGetAttraction は景点詳細のハンドラを返す。閲覧数を1増やす。
func (s *Server) handleGetAttraction() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			fail(c, http.StatusBadRequest, "无效的景点ID")
			return
		}

		if _, err := s.store.incrementAttraction(c.Request.Context(), id, "view_count"); err != nil {
			s.attractionError(c, err)
			return
		}
		a, err := s.store.attraction(c.Request.Context(), id)
		if err != nil {
			s.attractionError(c, err)
			return
		}
		success(c, "获取成功", a)
	}
}

// handleCountAttraction は景点のいいね・お気に入りのハンドラを返す。
func (s *Server) handleCountAttraction(column, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			fail(c, http.StatusBadRequest, "无效的景点ID")
			return
		}

		n, err := s.store.incrementAttraction(c.Request.Context(), id, column)
		if err != nil {
			s.attractionError(c, err)
			return
		}
		success(c, message, gin.H{column: n})
	}
}

// attractionError は景点の取得・更新エラーをレスポンスに変換する。
func (s *Server) attractionError(c *gin.Context, err error) {
	if errors.Is(err, errNotFound) {
		fail(c, http.StatusNotFound, "景点不存在")
		return
	}
	log.Printf("[MockAPI] 景点の処理エラー: %v", err)
	fail(c, http.StatusInternalServerError, "服务器内部错误")
}
