package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/DoyleJ11/toppan-client/internal/command"
	"github.com/DoyleJ11/toppan-client/internal/view"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
}

func GetFrame(v *view.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := v.Frame(r.Context())
		if err != nil {
			writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, f)
	}
}

// PostCommand runs one command. The body is an optional JSON object whose
// values are read as form fields, e.g. {"bet": 3}.
func PostCommand(v *view.Context, d *command.Dispatcher, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		form, err := readForm(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad json"})
			return
		}

		cmd, err := command.Parse(name, form)
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, command.ErrUnknownCommand) {
				status = http.StatusNotFound
			}
			writeJSON(w, status, errorBody{Error: err.Error()})
			return
		}

		f, err := v.Frame(r.Context())
		if err != nil {
			writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: err.Error()})
			return
		}
		if err := d.Dispatch(r.Context(), f.Controls, cmd); err != nil {
			log.Debug("command failed", zap.String("cmd", name), zap.Error(err))
			writeJSON(w, statusFor(err), errorBody{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, struct {
			OK bool `json:"ok"`
		}{OK: true})
	}
}

func statusFor(err error) int {
	switch {
	case command.IsRejection(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, command.ErrWrongPhase),
		errors.Is(err, command.ErrNotHost),
		errors.Is(err, command.ErrNotEnoughPlayers),
		errors.Is(err, command.ErrNotYourTurn),
		errors.Is(err, command.ErrDealerCannotBet),
		errors.Is(err, command.ErrNotDealer):
		return http.StatusConflict
	}
	return http.StatusBadGateway
}

func readForm(r *http.Request) (map[string]string, error) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	form := make(map[string]string, len(body))
	for k, val := range body {
		form[k] = fmt.Sprint(val)
	}
	return form, nil
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
