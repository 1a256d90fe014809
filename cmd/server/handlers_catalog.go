package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/printquote/internal/api/responses"
	"github.com/Simplici0/printquote/internal/api/validators"
)

func (s *server) handleDevicesList(w http.ResponseWriter, r *http.Request) {
	devices, err := s.catalog.ListDevices(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	responses.WriteSuccess(w, devices)
}

func (s *server) handleDevicesCreate(w http.ResponseWriter, r *http.Request) {
	var req deviceRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	d, err := s.catalog.CreateDevice(r.Context(), req.toInput())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.log.Info(s.log.WithField(r.Context(), "device_id", d.ID), "device.created")
	responses.WriteSuccessStatus(w, http.StatusCreated, d)
}

func (s *server) handleDevicesUpdate(w http.ResponseWriter, r *http.Request) {
	var req deviceRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	d, err := s.catalog.UpdateDevice(r.Context(), chi.URLParam(r, "id"), req.toInput())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	responses.WriteSuccess(w, d)
}

func (s *server) handleDevicesDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.catalog.DeleteDevice(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.log.Info(s.log.WithField(r.Context(), "device_id", id), "device.deleted")
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleManagersList(w http.ResponseWriter, r *http.Request) {
	managers, err := s.catalog.ListManagers(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	responses.WriteSuccess(w, managers)
}

func (s *server) handleManagersCreate(w http.ResponseWriter, r *http.Request) {
	var req managerRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	name, err := s.catalog.AddManager(r.Context(), req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"name": name})
}

func (s *server) handleManagersDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.DeleteManager(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
