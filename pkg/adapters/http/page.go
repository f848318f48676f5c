package http

import (
	_ "embed"
	"net/http"
)

//go:embed static/index.html
var chatPage []byte

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(chatPage)
}
