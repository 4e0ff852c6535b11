package mockapi

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/langcrowd/internal/client/models"
	"github.com/dmitrijs2005/langcrowd/internal/client/validate"
	"github.com/dmitrijs2005/langcrowd/internal/common"
	"github.com/dmitrijs2005/langcrowd/internal/shared"
)

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var c models.Credentials
	if !decode(w, r, &c) {
		return
	}
	if err := validate.Credentials(c); err != nil {
		writeError(w, err)
		return
	}
	u, ok := s.store.Authenticate(c.Username, c.Password)
	if !ok {
		writeFields(w, map[string][]string{"non_field_errors": {"Unable to log in with provided credentials."}})
		return
	}
	if !u.IsActive {
		writeFields(w, map[string][]string{"non_field_errors": {"User account is disabled."}})
		return
	}
	s.respondWithToken(w, r, http.StatusOK, u)
}

func (s *Server) respondWithToken(w http.ResponseWriter, r *http.Request, status int, u *account) {
	token, err := s.issueToken(u)
	if err != nil {
		s.logger.Error(r.Context(), "issue token", "err", err)
		writeError(w, err)
		return
	}
	writeJSON(w, status, models.AuthResponse{User: u.profile(), Token: token})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var f models.RegisterForm
	if !decode(w, r, &f) {
		return
	}
	if err := validate.Registration(f); err != nil {
		writeError(w, err)
		return
	}
	taken := validate.New()
	if s.store.UsernameTaken(f.Username) {
		taken.Add("username", "A user with that username already exists.")
	}
	if s.store.EmailTaken(f.Email) {
		taken.Add("email", "A user with that email already exists.")
	}
	if !taken.IsEmpty() {
		writeFields(w, taken.Map())
		return
	}
	u, err := s.store.CreateUser(models.UserRecord{
		Username: f.Username,
		Email:    f.Email,
		Role:     models.RoleContributor,
		IsActive: true,
	}, f.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	s.logger.Info(r.Context(), "user registered", "username", u.Username)
	s.respondWithToken(w, r, http.StatusCreated, u)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if token, ok := r.Context().Value(tokenKey).(string); ok {
		s.store.Revoke(token)
	}
	writeDetail(w, http.StatusOK, "Successfully logged out.")
}

func (s *Server) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if !decode(w, r, &body) {
		return
	}
	if err := validate.Apply(validate.Required("email", body.Email, "Email is required"), validate.Email("email", body.Email)); err != nil {
		writeError(w, err)
		return
	}
	token, err := shared.MakeRandHexString(16)
	if err != nil {
		writeError(w, err)
		return
	}
	if uid, ok := s.store.IssueResetToken(body.Email, token); ok {
		// there is no mailer; the log is the delivery channel
		s.logger.Info(r.Context(), "password reset issued", "uid", uid, "token", token)
	}
	writeDetail(w, http.StatusOK, "If the email exists, a reset link has been sent.")
}

func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UID      string `json:"uid"`
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if !decode(w, r, &body) {
		return
	}
	if err := validate.Apply(
		validate.Required("password", body.Password, "Password is required"),
		validate.MinLen("password", body.Password, common.MinPasswordLength, "Password is too short"),
	); err != nil {
		writeError(w, err)
		return
	}
	uid := models.ID(body.UID)
	if !s.store.ConsumeResetToken(uid, body.Token) {
		writeDetail(w, http.StatusBadRequest, "Invalid or expired reset link.")
		return
	}
	if err := s.store.SetPassword(uid, body.Password); err != nil {
		writeError(w, err)
		return
	}
	writeDetail(w, http.StatusOK, "Password has been reset.")
}

func (s *Server) sendCode(w http.ResponseWriter, r *http.Request) {
	u := caller(r)
	code, err := shared.MakeRandHexString(3)
	if err != nil {
		writeError(w, err)
		return
	}
	code = strings.ToUpper(code)
	s.store.SetCode(u.ID, code)
	s.logger.Info(r.Context(), "2fa code issued", "user", u.Username, "code", code)
	writeDetail(w, http.StatusOK, "Verification code sent.")
}

func (s *Server) verifyCode(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code string `json:"code"`
	}
	if !decode(w, r, &body) {
		return
	}
	if !s.store.CheckCode(caller(r).ID, strings.ToUpper(strings.TrimSpace(body.Code))) {
		writeFields(w, map[string][]string{"code": {"Invalid or expired code."}})
		return
	}
	writeDetail(w, http.StatusOK, "Verified.")
}

func (s *Server) checkUsername(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("username"))
	writeJSON(w, http.StatusOK, map[string]bool{"available": name != "" && !s.store.UsernameTaken(name)})
}

func (s *Server) checkEmail(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	writeJSON(w, http.StatusOK, map[string]bool{"available": email != "" && !s.store.EmailTaken(email)})
}
