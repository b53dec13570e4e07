package service

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Arleycht/stream-bot/twitch"
)

// StatsSource отдаёт счётчики клиента чата.
type StatsSource interface {
	Stats() twitch.Stats
}

// StorageStats отдаёт счётчики хранилища; может отсутствовать.
type StorageStats interface {
	Inserted() uint64
	Dropped() uint64
}

type statusResponse struct {
	Client  twitch.Stats   `json:"client"`
	Storage *storageStatus `json:"storage,omitempty"`
}

type storageStatus struct {
	Inserted uint64 `json:"inserted"`
	Dropped  uint64 `json:"dropped"`
}

// StatusHandler возвращает роутер с /healthz и /stats.
func StatusHandler(client StatsSource, storage StorageStats) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Get("/stats", func(w http.ResponseWriter, r *http.Request) {
		resp := statusResponse{Client: client.Stats()}
		if storage != nil {
			resp.Storage = &storageStatus{
				Inserted: storage.Inserted(),
				Dropped:  storage.Dropped(),
			}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	})

	return r
}
