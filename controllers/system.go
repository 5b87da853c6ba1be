package controllers

import (
	"net/http"

	"github.com/fehmi19/cheebo/utils"
)

const apiVersion = "1.0.0"

type serviceInfo struct {
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	Endpoints []string `json:"endpoints"`
}

// Index reports that the API is up
func Index(w http.ResponseWriter, r *http.Request) {
	utils.WriteData(w, http.StatusOK, serviceInfo{
		Name:    "cheebo",
		Version: apiVersion,
		Endpoints: []string{
			"/api/users", "/api/products", "/api/orders",
			"/api/pets", "/api/vets", "/api/posts", "/api/tasks", "/api/upload",
		},
	}, "API Cheebo opérationnelle")
}

// NotFound answers unknown routes with the error envelope
func NotFound(w http.ResponseWriter, r *http.Request) {
	utils.WriteError(w, utils.NotFound("Route not found"))
}
