package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"todoweb/internal/identity"
	"todoweb/internal/store"
	"todoweb/internal/todolist"
)

type Handler interface {
	HandleSessionGate(c *gin.Context)

	HandleLoginPage(c *gin.Context)
	HandleRegisterPage(c *gin.Context)
	HandleLogin(c *gin.Context)
	HandleRegister(c *gin.Context)
	HandleVerify(c *gin.Context)
	HandleLogout(c *gin.Context)

	HandleDashboard(c *gin.Context)
	HandleCreateTodo(c *gin.Context)
	HandleToggleTodo(c *gin.Context)
	HandleRenameTodo(c *gin.Context)
	HandleDeleteTodo(c *gin.Context)
	HandleStartEdit(c *gin.Context)
	HandleCancelEdit(c *gin.Context)
}

type handlerImpl struct {
	logger   zerolog.Logger
	provider identity.Provider
	todos    store.TodoStore
	pages    *todolist.Pages
}

func New(
	logger zerolog.Logger,
	provider identity.Provider,
	todos store.TodoStore,
	pages *todolist.Pages,
) Handler {
	return &handlerImpl{
		logger:   logger,
		provider: provider,
		todos:    todos,
		pages:    pages,
	}
}
