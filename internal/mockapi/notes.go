package mockapi

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// handleListNotes は旅行記一覧のハンドラを返す。
func (s *Server) handleListNotes() gin.HandlerFunc {
	return func(c *gin.Context) {
		pageNo, perPage := pageQuery(c)
		items, total, err := s.store.listNotes(c.Request.Context(), pageNo, perPage)
		if err != nil {
			log.Printf("[MockAPI] 旅行記一覧の取得エラー: %v", err)
			fail(c, http.StatusInternalServerError, "服务器内部错误")
			return
		}
		successCode0(c, "获取成功", page[Note]{
			Items:      items,
			Pagination: newPagination(total, pageNo, perPage),
		})
	}
}

// handleGetNote は旅行記詳細のハンドラを返す。
func (s *Server) handleGetNote() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			fail(c, http.StatusBadRequest, "无效的游记ID")
			return
		}

		n, err := s.store.note(c.Request.Context(), id)
		if errors.Is(err, errNotFound) {
			fail(c, http.StatusNotFound, "游记不存在或已下架")
			return
		}
		if err != nil {
			log.Printf("[MockAPI] 旅行記の取得エラー: %v", err)
			fail(c, http.StatusInternalServerError, "服务器内部错误")
			return
		}
		successCode0(c, "获取游记详情成功", n)
	}
}
