package serializer

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/obraplan/obraplan/internal/pkg/apperr"
	"go.uber.org/zap"
)

var log = zap.NewNop()

// SetLogger wires the package logger so error envelopes get logged once,
// at the edge, instead of in every handler.
func SetLogger(l *zap.Logger) {
	if l != nil {
		log = l
	}
}

// Response
type Response struct {
	Code  int         `json:"code"`
	Data  interface{} `json:"data,omitempty"`
	Msg   string      `json:"msg"`
	Error string      `json:"error,omitempty"`
}

// Err
func Err(errCode int, msg string, err error) Response {
	res := Response{
		Code: errCode,
		Msg:  msg,
	}
	// development mode, show error detail
	if err != nil && gin.Mode() != gin.ReleaseMode {
		res.Error = fmt.Sprintf("%+v", err)
	}
	return res
}

// DBErr
func DBErr(msg string, err error) Response {
	if msg == "" {
		msg = "database error"
	}
	return Err(http.StatusInternalServerError, msg, err)
}

// ParamErr
func ParamErr(msg string, err error) Response {
	if msg == "" {
		msg = "parameter error"
	}
	return Err(http.StatusBadRequest, msg, err)
}

// AuthErr
func AuthErr(msg string) Response {
	if msg == "" {
		msg = "authentication error"
	}
	return Err(http.StatusUnauthorized, msg, nil)
}

// FromErr maps a service error onto the response envelope, honoring the
// apperr taxonomy. Unknown errors come back as a plain 500.
func FromErr(err error) (int, Response) {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		status := ae.HTTPStatus()
		if status == http.StatusInternalServerError {
			log.Error("request failed", zap.Error(err))
		}
		return status, Err(status, ae.Msg, ae.Err)
	}
	log.Error("request failed", zap.Error(err))
	return http.StatusInternalServerError, Err(http.StatusInternalServerError, "internal server error", err)
}
