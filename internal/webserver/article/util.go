package article

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"articles-cms/internal/shared/model"
)

// generateID 生成带前缀的唯一标识符，格式 prefix-xxxxxxxxxxxx
func generateID(prefix string) string {
	b := make([]byte, 6)
	rand.Read(b)
	return prefix + "-" + hex.EncodeToString(b)
}

// writeJSON 将数据以 JSON 格式写入 HTTP 响应
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError 将错误信息以 JSON 格式写入 HTTP 响应
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeValidation 以 422 返回整体收集的字段错误，并回显输入
func writeValidation(w http.ResponseWriter, echo interface{}, errs model.ValidationErrors) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
		"article": echo,
		"errors":  errs,
	})
}
