package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"winelabel/internal/dto"
	applog "winelabel/internal/log"
	"winelabel/models"
)

var errEmailTaken = errors.New("email already registered")

func (a *API) findUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	err := a.db.WithContext(ctx).Where("lower(email) = ?", strings.ToLower(email)).First(user).Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (a *API) createUser(ctx context.Context, req dto.RegisterRequest) (*models.Profile, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := a.findUserByEmail(ctx, email); err == nil {
		return nil, errEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	profile := &models.Profile{Email: email, FullName: strings.TrimSpace(req.FullName)}
	err = a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user := &models.User{Email: email, PasswordHash: string(hashed)}
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		profile.ID = user.ID
		return tx.Create(profile).Error
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (a *API) profileFor(ctx context.Context, user *models.User) models.Profile {
	var profile models.Profile
	if err := a.db.WithContext(ctx).First(&profile, "id = ?", user.ID).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			applog.Error(ctx, "failed to load profile", "error", err, "user", user.ID)
		}
		return models.Profile{Model: models.Model{ID: user.ID}, Email: user.Email}
	}
	return profile
}

func (a *API) register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !a.decode(w, r, &req) {
		return
	}

	profile, err := a.createUser(r.Context(), req)
	if err != nil {
		if errors.Is(err, errEmailTaken) {
			writeJSONError(w, http.StatusConflict, err.Error())
			return
		}
		fail(w, r, err, "unable to create account")
		return
	}

	token, err := a.tokens.Issue(profile.ID, profile.Email)
	if err != nil {
		fail(w, r, err, "unable to issue token")
		return
	}

	applog.Info(r.Context(), "account registered", "user", profile.ID)
	writeJSON(w, http.StatusCreated, dto.AuthResponse{Token: token, Profile: *profile})
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !a.decode(w, r, &req) {
		return
	}

	user, err := a.findUserByEmail(r.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSONError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		fail(w, r, err, "unable to sign in")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		writeJSONError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := a.tokens.Issue(user.ID, user.Email)
	if err != nil {
		fail(w, r, err, "unable to issue token")
		return
	}

	writeJSON(w, http.StatusOK, dto.AuthResponse{Token: token, Profile: a.profileFor(r.Context(), user)})
}

// Tokens are stateless; the web app forgets its copy.
func (a *API) logout(w http.ResponseWriter, r *http.Request) {
	applog.Debug(r.Context(), "logout", "user", userIDFrom(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) me(w http.ResponseWriter, r *http.Request) {
	var profile models.Profile
	if err := a.db.WithContext(r.Context()).First(&profile, "id = ?", userIDFrom(r.Context())).Error; err != nil {
		fail(w, r, err, "unable to load profile")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
