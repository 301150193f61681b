package httpserver

import (
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"
)

const qrSize = 256

// handleQR serves a PNG QR code pointing at the game page, for opening it on a
// phone. PublicURL wins over the request's own host.
func (s *Server) handleQR(w http.ResponseWriter, r *http.Request) {
	url := s.opts.PublicURL
	if url == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		url = scheme + "://" + r.Host + "/"
	}

	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		log.Error().Err(err).Str("url", url).Msg("encode qr")
		http.Error(w, "qr failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}
