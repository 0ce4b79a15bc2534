package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/karanvir/timewax/internal/audio"
	"github.com/karanvir/timewax/internal/biphase"
	"github.com/karanvir/timewax/internal/config"
	"github.com/karanvir/timewax/internal/dvs"
	"github.com/karanvir/timewax/internal/host"
	"github.com/karanvir/timewax/internal/ltc"
	"github.com/karanvir/timewax/internal/stream"
	"github.com/karanvir/timewax/internal/web"
)

func main() {
	// .env is optional; the environment wins either way.
	godotenv.Load()
	cfg := config.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Println("timewax starting up...")

	decode := ltc.NewDecodeEngine(ltc.DecodeConfig{
		OffsetSeconds: cfg.OffsetSeconds,
		Unit:          cfg.Unit,
		Rate:          cfg.Rate,
		QueueDepth:    cfg.QueueDepth,
	}, biphase.NewDecoder)

	encode := ltc.NewEncodeEngine(ltc.EncodeConfig{
		OffsetSeconds: cfg.EncodeOffset,
		Rate:          cfg.EncodeRate,
	}, biphase.NewEncoder)

	quality := dvs.NewEngine(dvs.Config{
		Format:        cfg.VinylFormat,
		RPM:           cfg.RPM,
		Filter:        cfg.PitchFilter,
		LeadInSeconds: cfg.LeadIn,
		Tempo:         cfg.Tempo,
	}, dvs.NewCarrierCorrelator)

	// Input source: loopback decodes our own generated LTC.
	var input <-chan []int16
	switch cfg.Source {
	case "file":
		capture := audio.NewFFmpegCapture(cfg.Input)
		go func() {
			if err := capture.Run(ctx); err != nil && ctx.Err() == nil {
				log.Printf("capture: %v", err)
			}
		}()
		input = capture.Frames()
		log.Printf("input: ffmpeg capture from %s", cfg.Input)
	case "raw":
		capture := audio.NewRawCapture(cfg.Input, cfg.InputRate)
		go func() {
			if err := capture.Run(ctx); err != nil && ctx.Err() == nil {
				log.Printf("capture: %v", err)
			}
		}()
		input = capture.Frames()
		log.Printf("input: raw PCM from %s at %d Hz", cfg.Input, cfg.InputRate)
	default:
		log.Println("input: loopback (decoding generated LTC)")
	}

	h := host.New(decode, encode, quality, cfg.Tempo, input)
	go h.Run(ctx)

	// Broadcaster: fan out generated LTC audio to monitor listeners.
	broadcaster := stream.NewBroadcaster()
	go broadcaster.Run(ctx, h.Frames())

	webrtcHandler := stream.NewWebRTCHandler(broadcaster)

	mux := http.NewServeMux()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(web.IndexHTML)
	})

	mux.Handle("/stream", stream.NewHTTPHandler(broadcaster))
	mux.Handle("/offer", webrtcHandler)
	mux.Handle("/ws", stream.NewStatusHandler(func() any { return h.Status() }))

	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		s := h.Status()
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		json.NewEncoder(w).Encode(map[string]any{
			"decode":          s.Decode,
			"dvs":             s.DVS,
			"sample_position": s.SamplePosition,
			"encoded_frames":  s.EncodedFrames,
			"ticks":           s.Ticks,
			"tempo":           s.Tempo,
			"listeners":       broadcaster.ListenerCount() + webrtcHandler.PeerCount(),
			"dropped_frames":  broadcaster.Dropped(),
			"config": map[string]any{
				"source":     cfg.Source,
				"offset":     s.DecodeConfig.OffsetSeconds,
				"unit":       s.DecodeConfig.Unit.String(),
				"rate":       s.DecodeConfig.Rate.String(),
				"queue":      s.DecodeConfig.QueueDepth,
				"vinyl":      dvs.LookupFormat(s.DVSConfig.Format).Name,
				"rpm":        int(s.DVSConfig.RPM),
				"leadin":     s.DVSConfig.LeadInSeconds,
				"enc_rate":   s.EncodeConfig.Rate.String(),
				"enc_offset": s.EncodeConfig.OffsetSeconds,
			},
		})
	})

	mux.HandleFunc("/api/config", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST required", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Offset      *int     `json:"offset"`
			Unit        *string  `json:"unit"`
			Rate        *string  `json:"rate"`
			Queue       *int     `json:"queue"`
			EncOffset   *int     `json:"enc_offset"`
			EncRate     *string  `json:"enc_rate"`
			Tempo       *float64 `json:"tempo"`
			Vinyl       *string  `json:"vinyl"`
			RPM         *int     `json:"rpm"`
			PitchFilter *string  `json:"pitch_filter"`
			LeadIn      *float64 `json:"leadin"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		if req.Offset != nil {
			v := *req.Offset
			if v < -128000 || v > 128000 {
				http.Error(w, "offset must be -128000..128000", http.StatusBadRequest)
				return
			}
			h.Reconfigure(func() { decode.SetOffset(v) })
		}
		if req.Unit != nil {
			u, err := ltc.ParseOutputUnit(*req.Unit)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			h.Reconfigure(func() { decode.SetUnit(u) })
		}
		if req.Rate != nil {
			rate, err := ltc.ParseRateStandard(*req.Rate)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			h.Reconfigure(func() { decode.SetRate(rate) })
		}
		if req.Queue != nil {
			v := *req.Queue
			if v < ltc.MinQueueDepth || v > ltc.MaxQueueDepth {
				http.Error(w, fmt.Sprintf("queue must be %d-%d", ltc.MinQueueDepth, ltc.MaxQueueDepth), http.StatusBadRequest)
				return
			}
			h.Reconfigure(func() { decode.SetQueueDepth(v) })
		}
		if req.EncOffset != nil {
			v := *req.EncOffset
			h.Reconfigure(func() { encode.SetOffset(v) })
		}
		if req.EncRate != nil {
			rate, err := ltc.ParseRateStandard(*req.EncRate)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			h.Reconfigure(func() { encode.SetRate(rate) })
		}
		if req.Tempo != nil {
			v := *req.Tempo
			if v <= 0 || v > 300 {
				http.Error(w, "tempo must be 0-300", http.StatusBadRequest)
				return
			}
			h.SetTempo(v)
			h.Reconfigure(func() { quality.SetTempo(v) })
		}
		if req.Vinyl != nil {
			f, err := dvs.ParseFormat(*req.Vinyl)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			h.Reconfigure(func() { quality.SetFormat(f) })
		}
		if req.RPM != nil {
			v := dvs.RPM(*req.RPM)
			if v != dvs.RPM33 && v != dvs.RPM45 {
				http.Error(w, "rpm must be 33 or 45", http.StatusBadRequest)
				return
			}
			h.Reconfigure(func() { quality.SetRPM(v) })
		}
		if req.PitchFilter != nil {
			var f dvs.PitchFilter
			switch *req.PitchFilter {
			case "modern":
				f = dvs.FilterModern
			case "legacy":
				f = dvs.FilterLegacy
			default:
				http.Error(w, "pitch_filter must be modern or legacy", http.StatusBadRequest)
				return
			}
			h.Reconfigure(func() { quality.SetPitchFilter(f) })
		}
		if req.LeadIn != nil {
			v := *req.LeadIn
			if v < 0 || v > 60 {
				http.Error(w, "leadin must be 0-60", http.StatusBadRequest)
				return
			}
			h.Reconfigure(func() { quality.SetLeadIn(v) })
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"ok": true})
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		log.Println("Shutting down...")
		server.Close()
	}()

	log.Printf("timewax live on %s", addr)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("HTTP server error: %v", err)
	}
}
