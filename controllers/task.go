package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/fehmi19/cheebo/models"
	"github.com/fehmi19/cheebo/repository"
	"github.com/fehmi19/cheebo/utils"
)

// TaskController manages the caller's personal tasks. A task that belongs to
// someone else is indistinguishable from a missing one.
type TaskController struct {
	tasks repository.TaskRepository
}

func NewTaskController(tasks repository.TaskRepository) *TaskController {
	return &TaskController{tasks: tasks}
}

// GetTasks pages through the caller's tasks, optionally by status and priority
func (tc *TaskController) GetTasks(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	values := r.URL.Query()
	page := repository.ParsePage(values)
	q := repository.TaskQuery{Owner: user.ID, Status: values.Get("statut"), Priority: values.Get("priorite")}

	ctx, cancel := requestContext(r)
	defer cancel()

	tasks, total, err := tc.tasks.List(ctx, q, page)
	if err != nil {
		fail(w, r, err)
		return
	}
	writePage(w, tasks, len(tasks), page, total)
}

type taskRequest struct {
	Titre        *string    `json:"titre" validate:"omitempty,min=1,max=200"`
	Description  *string    `json:"description" validate:"omitempty,max=1000"`
	Statut       *string    `json:"statut" validate:"omitempty,oneof=en_attente en_cours terminee"`
	Priorite     *string    `json:"priorite" validate:"omitempty,oneof=basse moyenne haute"`
	DateEcheance *time.Time `json:"dateEcheance"`
}

func (req taskRequest) apply(t *models.Task) {
	if req.Titre != nil {
		t.Title = *req.Titre
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Statut != nil {
		t.Status = *req.Statut
	}
	if req.Priorite != nil {
		t.Priority = *req.Priorite
	}
	if req.DateEcheance != nil {
		t.DueDate = req.DateEcheance
	}
}

// CreateTask adds a task for the caller
func (tc *TaskController) CreateTask(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	var req taskRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	if req.Titre == nil {
		fail(w, r, utils.Validation("titre is required"))
		return
	}

	task := models.Task{Owner: user.ID}
	req.apply(&task)
	task.ApplyDefaults()
	if err := utils.ValidateStruct(task); err != nil {
		fail(w, r, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	if err := tc.tasks.Create(ctx, &task); err != nil {
		fail(w, r, err)
		return
	}
	utils.WriteData(w, http.StatusCreated, task, "Tâche créée avec succès")
}

// GetTask returns one of the caller's tasks
func (tc *TaskController) GetTask(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	id, err := pathID(r, "id", "tâche")
	if err != nil {
		fail(w, r, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	task, err := tc.tasks.FindOwned(ctx, id, user.ID)
	if err != nil {
		fail(w, r, storeErr(err, "Tâche non trouvée"))
		return
	}
	utils.WriteData(w, http.StatusOK, task, "")
}

// UpdateTask edits one of the caller's tasks
func (tc *TaskController) UpdateTask(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	id, err := pathID(r, "id", "tâche")
	if err != nil {
		fail(w, r, err)
		return
	}
	var req taskRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	var task *models.Task
	err = retry(ctx, func(ctx context.Context) error {
		t, err := tc.tasks.FindOwned(ctx, id, user.ID)
		if err != nil {
			return err
		}
		req.apply(t)
		if err := utils.ValidateStruct(t); err != nil {
			return err
		}
		if err := tc.tasks.Update(ctx, t); err != nil {
			return err
		}
		task = t
		return nil
	})
	if err != nil {
		fail(w, r, storeErr(err, "Tâche non trouvée"))
		return
	}
	utils.WriteData(w, http.StatusOK, task, "Tâche mise à jour avec succès")
}

// DeleteTask removes one of the caller's tasks
func (tc *TaskController) DeleteTask(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	id, err := pathID(r, "id", "tâche")
	if err != nil {
		fail(w, r, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	if err := tc.tasks.Delete(ctx, id, user.ID); err != nil {
		fail(w, r, storeErr(err, "Tâche non trouvée"))
		return
	}
	utils.WriteSuccess(w, http.StatusOK, utils.Response{Message: "Tâche supprimée avec succès"})
}
