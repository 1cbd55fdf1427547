package api

import (
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"winelabel/internal/dto"
	"winelabel/models"
)

func (a *API) listAppellations(w http.ResponseWriter, r *http.Request) {
	appellations := make([]models.Appellation, 0)
	if err := a.db.WithContext(r.Context()).Order("name asc").Find(&appellations).Error; err != nil {
		fail(w, r, err, "unable to load appellations")
		return
	}
	writeJSON(w, http.StatusOK, appellations)
}

func (a *API) createAppellation(w http.ResponseWriter, r *http.Request) {
	var input dto.AppellationInput
	if !a.decode(w, r, &input) {
		return
	}

	ctx := r.Context()
	name := strings.TrimSpace(input.Name)
	_, err := findAppellation(a.db.WithContext(ctx), name)
	switch {
	case err == nil:
		writeJSONError(w, http.StatusConflict, "appellation already exists")
		return
	case !errors.Is(err, gorm.ErrRecordNotFound):
		fail(w, r, err, "unable to create appellation")
		return
	}

	appellation := models.Appellation{Name: name, Description: strings.TrimSpace(input.Description)}
	res := a.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&appellation)
	if res.Error != nil {
		fail(w, r, res.Error, "unable to create appellation")
		return
	}
	if res.RowsAffected == 0 {
		writeJSONError(w, http.StatusConflict, "appellation already exists")
		return
	}
	writeJSON(w, http.StatusCreated, appellation)
}
