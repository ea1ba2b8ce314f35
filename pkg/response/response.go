package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type ResponseData struct {
	Code int         `json:"code"`
	Data interface{} `json:"data"`
	Msg  string      `json:"msg"`
}

func Response(ctx *gin.Context, httpStatus int, code int, data interface{}, msg string) {
	ctx.JSON(httpStatus, ResponseData{
		Code: code,
		Data: data,
		Msg:  msg,
	})
}

func Success(ctx *gin.Context, data interface{}, msg string) {
	Response(ctx, http.StatusOK, 200, data, msg)
}

// Fail 业务失败仍返回 200, 由 code 区分
func Fail(ctx *gin.Context, data interface{}, msg string) {
	Response(ctx, http.StatusOK, 400, data, msg)
}

func TokenFail(ctx *gin.Context) {
	Response(ctx, http.StatusUnauthorized, 401, nil, "调用方身份缺失")
}

func PermissionFail(ctx *gin.Context) {
	Response(ctx, http.StatusForbidden, 403, nil, "权限不足")
}
