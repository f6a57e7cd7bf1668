package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/roach88/treasury/internal/bounty"
	"github.com/roach88/treasury/internal/budget"
	"github.com/roach88/treasury/internal/runtime"
	"github.com/roach88/treasury/internal/store"
	"github.com/roach88/treasury/internal/types"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) registerRoutes(r gin.IRouter) {
	v1 := r.Group("/v1")
	v1.POST("/calls", s.submitCall)
	v1.GET("/blocks/head", s.head)
	v1.GET("/bounties/:id", s.bounty)
	v1.GET("/budgets/:type", s.budget)
	v1.GET("/budgets/:type/recipients/:user", s.recipient)
	v1.GET("/accounts/:id", s.account)
	v1.GET("/events", s.listEvents)
}

func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

// submitCall applies a call in the current block. Dispatch failures are
// part of the chain and answer 200 with the failing receipt.
func (s *Server) submitCall(c *gin.Context) {
	var call runtime.Call
	if err := c.ShouldBindJSON(&call); err != nil {
		abort(c, http.StatusBadRequest, string(runtime.ErrCodeDecode), err.Error())
		return
	}

	rc, err := s.rt.Submit(c.Request.Context(), call)
	if err != nil {
		s.callError(c, err)
		return
	}
	c.JSON(http.StatusOK, rc)
}

func (s *Server) callError(c *gin.Context, err error) {
	var re *runtime.Error
	switch {
	case errors.Is(err, runtime.ErrStopped):
		abort(c, http.StatusServiceUnavailable, "E_STOPPED", err.Error())
	case errors.As(err, &re):
		abort(c, statusFor(re.Code), string(re.Code), re.Message)
	default:
		abort(c, http.StatusInternalServerError, "E_INTERNAL", err.Error())
	}
}

func statusFor(code runtime.ErrorCode) int {
	switch code {
	case runtime.ErrCodeUnknownCall:
		return http.StatusNotFound
	case runtime.ErrCodeDecode:
		return http.StatusBadRequest
	case runtime.ErrCodeBlockFull:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) head(c *gin.Context) {
	c.JSON(http.StatusOK, s.rt.Head())
}

func (s *Server) bounty(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	v, found := s.rt.Bounty(bounty.BountyID(id))
	if !found {
		abort(c, http.StatusNotFound, "E_NOT_FOUND", "no such bounty")
		return
	}
	c.JSON(http.StatusOK, v)
}

func (s *Server) budget(c *gin.Context) {
	v, found := s.rt.Budget(budget.BudgetType(c.Param("type")))
	if !found {
		abort(c, http.StatusNotFound, "E_NOT_FOUND", "no such budget")
		return
	}
	c.JSON(http.StatusOK, v)
}

func (s *Server) recipient(c *gin.Context) {
	user, ok := uintParam(c, "user")
	if !ok {
		return
	}
	v, found := s.rt.Recipient(budget.BudgetType(c.Param("type")), types.MemberID(user))
	if !found {
		abort(c, http.StatusNotFound, "E_NOT_FOUND", "no such recipient")
		return
	}
	c.JSON(http.StatusOK, v)
}

func (s *Server) account(c *gin.Context) {
	c.JSON(http.StatusOK, s.rt.Account(types.AccountID(c.Param("id"))))
}

func (s *Server) listEvents(c *gin.Context) {
	if s.events == nil {
		abort(c, http.StatusNotImplemented, "E_NO_STORE", "node runs without an event store")
		return
	}

	var f store.EventFilter
	if raw := c.Query("block"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			abort(c, http.StatusBadRequest, "E_BAD_PARAM", "block must be a block number")
			return
		}
		f.Block = &n
	}
	f.Module = c.Query("module")
	f.Name = c.Query("name")

	events, err := s.events.ReadEvents(c.Request.Context(), f)
	if err != nil {
		abort(c, http.StatusInternalServerError, string(runtime.ErrCodeStore), err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func uintParam(c *gin.Context, name string) (uint64, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		abort(c, http.StatusBadRequest, "E_BAD_PARAM", name+" must be a non-negative integer")
		return 0, false
	}
	return n, true
}
