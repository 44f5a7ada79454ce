package inspect

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/injectkit/errors"
	"github.com/kbukum/injectkit/logger"
)

// DataResponse is the standard success envelope.
type DataResponse struct {
	Data any `json:"data"`
}

// RespondWithError inspects err: if it is an *apperrors.AppError the status and
// structured body are derived automatically; otherwise a generic 500 is sent.
func RespondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus(), appErr.ToResponse())
		return
	}
	logger.Get("inspect").Error("unexpected handler error", logger.Fields(
		"path", c.FullPath(),
		logger.FieldError, err.Error(),
	))
	c.JSON(http.StatusInternalServerError, apperrors.Internal(err).ToResponse())
}

// RespondOK sends a 200 response wrapping data.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, DataResponse{Data: data})
}
