package tools

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/rs/xid"
)

// RandId 全局唯一的短 ID, 用于请求追踪
func RandId() string {
	return xid.New().String()
}

// RandHex n 字节随机数的十六进制表示, 远端服务 ID 使用 8 字节
func RandHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return xid.New().String()
	}
	return hex.EncodeToString(b)
}
