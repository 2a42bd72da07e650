package server

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/shouni/go-picture-book/pkg/session"

	"github.com/gin-gonic/gin"
)

type topicRequest struct {
	Topic string `json:"topic"`
}

type instructionRequest struct {
	Instruction string `json:"instruction"`
}

// current はリクエストに紐づく絵本セッションを返します。
func (s *Server) current(c *gin.Context) (*session.Session, bool) {
	id := c.GetString(sessionIDKey)
	sess, err := s.registry.Get(id)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "Failed to resolve session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return nil, false
	}
	return sess, true
}

// respond は err に応じたステータスで現在のビューを返します。
func respond(c *gin.Context, sess *session.Session, okStatus int, err error) {
	if err != nil {
		status, msg := statusFor(err)
		c.JSON(status, gin.H{"error": msg, "session": sess.View()})
		return
	}
	c.JSON(okStatus, sess.View())
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": s.registry.Len()})
}

func (s *Server) getSession(c *gin.Context) {
	sess, ok := s.current(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess.View())
}

func (s *Server) postTopic(c *gin.Context) {
	sess, ok := s.current(c)
	if !ok {
		return
	}
	var req topicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	respond(c, sess, http.StatusAccepted, sess.SubmitAsync(req.Topic, s.cfg.GenerateTimeout))
}

func (s *Server) postNext(c *gin.Context) {
	sess, ok := s.current(c)
	if !ok {
		return
	}
	respond(c, sess, http.StatusOK, sess.Next())
}

func (s *Server) postPrev(c *gin.Context) {
	sess, ok := s.current(c)
	if !ok {
		return
	}
	respond(c, sess, http.StatusOK, sess.Prev())
}

func (s *Server) putDraft(c *gin.Context) {
	sess, ok := s.current(c)
	if !ok {
		return
	}
	var req instructionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	respond(c, sess, http.StatusOK, sess.SetDraft(req.Instruction))
}

func (s *Server) postEdit(c *gin.Context) {
	sess, ok := s.current(c)
	if !ok {
		return
	}
	// 本文が空なら保存済みの下書きを使うのだ
	var req instructionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	respond(c, sess, http.StatusOK, sess.Edit(c.Request.Context(), req.Instruction))
}

func (s *Server) postRestart(c *gin.Context) {
	sess, ok := s.current(c)
	if !ok {
		return
	}
	sess.Restart()
	c.JSON(http.StatusOK, sess.View())
}

func (s *Server) postDismiss(c *gin.Context) {
	sess, ok := s.current(c)
	if !ok {
		return
	}
	sess.DismissError()
	c.JSON(http.StatusOK, sess.View())
}

func (s *Server) getGame(c *gin.Context) {
	sess, ok := s.current(c)
	if !ok {
		return
	}
	game, err := sess.Game()
	if err != nil {
		respond(c, sess, http.StatusOK, err)
		return
	}
	c.JSON(http.StatusOK, game.Snapshot(time.Now()))
}

func (s *Server) popBalloon(c *gin.Context) {
	sess, ok := s.current(c)
	if !ok {
		return
	}
	game, err := sess.Game()
	if err != nil {
		respond(c, sess, http.StatusOK, err)
		return
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid balloon id"})
		return
	}
	if !game.Pop(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "balloon not found", "game": game.Snapshot(time.Now())})
		return
	}
	c.JSON(http.StatusOK, game.Snapshot(time.Now()))
}
