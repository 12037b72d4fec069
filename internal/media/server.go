package media

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"

	"pawstogether/internal/dbmongo"
)

// HTTPServer serves stored media back out over the durable /media/{fileId}
// URLs that posts and pet listings embed.
type HTTPServer struct {
	storage *dbmongo.MediaStorage
}

func NewHTTPServer(storage *dbmongo.MediaStorage) *HTTPServer {
	return &HTTPServer{storage: storage}
}

func (s *HTTPServer) Register(router *mux.Router) {
	router.HandleFunc("/media/{fileId}", s.serveFile).Methods("GET")
	router.HandleFunc("/health", s.health).Methods("GET")
}

func (s *HTTPServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	router := mux.NewRouter()
	s.Register(router)
	router.ServeHTTP(w, r)
}

func (s *HTTPServer) serveFile(w http.ResponseWriter, r *http.Request) {
	fileID := mux.Vars(r)["fileId"]

	fileReader, mediaFile, err := s.storage.DownloadFile(r.Context(), fileID)
	if err != nil {
		http.Error(w, "file not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", contentTypeFor(mediaFile.Filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", mediaFile.Size))

	if _, err := io.Copy(w, fileReader); err != nil {
		log.Printf("error streaming file %s: %v", fileID, err)
	}
}

// contentTypeFor maps the stored filename's extension; unknown extensions
// fall back to octet-stream.
func contentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".mp4":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	default:
		return "application/octet-stream"
	}
}

func (s *HTTPServer) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("media server is healthy"))
}
