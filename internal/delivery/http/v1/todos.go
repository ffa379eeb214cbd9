package v1

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"todoweb/internal/todolist"
)

func (h *handlerImpl) HandleDashboard(c *gin.Context) {
	ident, ok := currentIdentity(c)
	if !ok {
		redirectToLogin(c)
		return
	}
	page := h.pages.Get(ident.SessionID)

	todos, err := h.todos.ListByOwner(c, ident.UserID)
	if err != nil {
		// Keep whatever the page already shows rather than
		// rendering a half-true list.
		h.logger.Error().
			Err(err).
			Str("user_id", ident.UserID).
			Msg("failed to load todos")
	} else {
		page.Replace(todos)
	}

	data := gin.H{
		"Email": ident.Email,
		"Todos": page.Todos(),
	}
	if editing, ok := page.Editing(); ok {
		data["Editing"] = editing
	}
	c.HTML(http.StatusOK, "dashboard.html", data)
}

func (h *handlerImpl) HandleCreateTodo(c *gin.Context) {
	ident, ok := currentIdentity(c)
	if !ok {
		redirectToLogin(c)
		return
	}

	task := strings.TrimSpace(c.PostForm("task"))
	if task == "" {
		// Blank input never reaches the store.
		c.Redirect(http.StatusSeeOther, "/dashboard")
		return
	}

	todo, err := h.todos.Insert(c, ident.UserID, task)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("user_id", ident.UserID).
			Msg("failed to create todo")
	} else {
		h.pages.Get(ident.SessionID).Apply(todolist.Created{Todo: *todo})
	}

	c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h *handlerImpl) HandleToggleTodo(c *gin.Context) {
	ident, ok := currentIdentity(c)
	if !ok {
		redirectToLogin(c)
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Str("id", c.Param("id")).
			Msg("invalid todo id")
		c.Redirect(http.StatusSeeOther, "/dashboard")
		return
	}

	// The form submits the flag the row showed when the user
	// clicked; the store receives its negation. Last write wins.
	isComplete, err := strconv.ParseBool(c.PostForm("is_complete"))
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("invalid completion flag")
		c.Redirect(http.StatusSeeOther, "/dashboard")
		return
	}

	err = h.todos.SetComplete(c, id, ident.UserID, !isComplete)
	if err != nil {
		h.logger.Error().
			Err(err).
			Int64("todo_id", id).
			Msg("failed to toggle todo")
	} else {
		h.pages.Get(ident.SessionID).Apply(todolist.Toggled{ID: id})
	}

	c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h *handlerImpl) HandleRenameTodo(c *gin.Context) {
	ident, ok := currentIdentity(c)
	if !ok {
		redirectToLogin(c)
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Str("id", c.Param("id")).
			Msg("invalid todo id")
		c.Redirect(http.StatusSeeOther, "/dashboard")
		return
	}

	task := strings.TrimSpace(c.PostForm("task"))
	if task == "" {
		// No-op: editing state stays active so the form
		// is still there after the redirect.
		c.Redirect(http.StatusSeeOther, "/dashboard")
		return
	}

	page := h.pages.Get(ident.SessionID)
	err = h.todos.Rename(c, id, ident.UserID, task)
	if err != nil {
		h.logger.Error().
			Err(err).
			Int64("todo_id", id).
			Msg("failed to rename todo")
	} else {
		page.Apply(todolist.Renamed{ID: id, Task: task})
		page.CancelEdit()
	}

	c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h *handlerImpl) HandleDeleteTodo(c *gin.Context) {
	ident, ok := currentIdentity(c)
	if !ok {
		redirectToLogin(c)
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Str("id", c.Param("id")).
			Msg("invalid todo id")
		c.Redirect(http.StatusSeeOther, "/dashboard")
		return
	}

	err = h.todos.Delete(c, id, ident.UserID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Int64("todo_id", id).
			Msg("failed to delete todo")
	} else {
		h.pages.Get(ident.SessionID).Apply(todolist.Deleted{ID: id})
	}

	c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h *handlerImpl) HandleStartEdit(c *gin.Context) {
	ident, ok := currentIdentity(c)
	if !ok {
		redirectToLogin(c)
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Str("id", c.Param("id")).
			Msg("invalid todo id")
		c.Redirect(http.StatusSeeOther, "/dashboard")
		return
	}

	h.pages.Get(ident.SessionID).StartEdit(id)
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h *handlerImpl) HandleCancelEdit(c *gin.Context) {
	ident, ok := currentIdentity(c)
	if !ok {
		redirectToLogin(c)
		return
	}

	h.pages.Get(ident.SessionID).CancelEdit()
	c.Redirect(http.StatusSeeOther, "/dashboard")
}
