package routes

import (
	"encoding/gob"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/github"

	"github.com/fr0stylo/storeconnect/internal/app/domain"
	"github.com/fr0stylo/storeconnect/internal/app/ports"
	appservices "github.com/fr0stylo/storeconnect/internal/app/services"
	"github.com/fr0stylo/storeconnect/internal/observability"
	"github.com/fr0stylo/storeconnect/internal/views"
)

const (
	authSessionName      = "storeconnect-auth"
	authSessionUserIDKey = "userID"
	authSessionNextKey   = "next"
	githubProvider       = "github"
	gothSessionName      = "_gothic_session"
)

// AuthConfig configures session and GitHub OAuth authentication.
type AuthConfig struct {
	SessionKey         string
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
	SecureCookies      bool
}

// AuthUser is the authenticated user stored in session and context.
type AuthUser struct {
	ID        int64
	Name      string
	NickName  string
	Email     string
	AvatarURL string
	Role      domain.Role
}

func init() {
	gob.Register(AuthUser{})
}

// ConfigureAuth initializes session store and GitHub OAuth provider.
func ConfigureAuth(config AuthConfig) {
	store := sessions.NewCookieStore([]byte(config.SessionKey))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int((7 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		Secure:   config.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	gothic.Store = store

	goth.UseProviders(
		github.New(
			config.GitHubClientID,
			config.GitHubClientSecret,
			config.GitHubCallbackURL,
			"read:user",
			"user:email",
		),
	)
}

// AuthRoutes registers authentication endpoints.
type AuthRoutes struct {
	users          *appservices.UserService
	enableDevLogin bool
}

// NewAuthRoutes constructs auth routes.
func NewAuthRoutes(users *appservices.UserService, enableDevLogin bool) *AuthRoutes {
	return &AuthRoutes{users: users, enableDevLogin: enableDevLogin}
}

// RegisterRoutes registers authentication routes on the server.
func (a *AuthRoutes) RegisterRoutes(s *echo.Echo) {
	s.GET("/login", a.handleLogin)
	s.GET("/logout", a.handleLogout)
	s.GET("/auth/:provider", a.handleAuthBegin)
	s.GET("/auth/:provider/callback", a.handleAuthCallback)
	if a.enableDevLogin {
		s.GET("/auth/dev/login", a.handleDevLogin)
		s.POST("/auth/dev/login", a.handleDevLogin)
	}
}

// RequireAuth ensures a request has an authenticated user session. Anonymous
// requests are sent to the login page and come back to the same URL.
func RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := authenticate(c); !ok {
			return c.Redirect(http.StatusFound, loginURL(c.Request().URL.RequestURI()))
		}
		return next(c)
	}
}

// authenticate loads the session user into the echo and request contexts.
func authenticate(c echo.Context) (AuthUser, bool) {
	if user, ok := GetAuthUser(c); ok {
		return user, true
	}
	user, ok := authUserFromSession(c)
	if !ok || user.ID <= 0 {
		return AuthUser{}, false
	}
	ctx := observability.WithRequestIdentity(c.Request().Context(), user.ID)
	c.SetRequest(c.Request().WithContext(ctx))
	c.Set("authUser", user)
	return user, true
}

func loginURL(next string) string {
	return "/login?" + url.Values{"next": {next}}.Encode()
}

func (a *AuthRoutes) handleLogin(c echo.Context) error {
	next := safeNext(c.QueryParam("next"))
	if _, ok := authUserFromSession(c); ok {
		return c.Redirect(http.StatusFound, next)
	}
	return c.Render(http.StatusOK, "", views.LoginPage(views.LoginView{Next: next, DevLogin: a.enableDevLogin}))
}

func (a *AuthRoutes) handleLogout(c echo.Context) error {
	session, err := gothic.Store.Get(c.Request(), authSessionName)
	if err != nil {
		if isInvalidSecureCookieError(err) {
			clearSessionCookie(c, authSessionName)
			clearSessionCookie(c, gothSessionName)
			return c.Redirect(http.StatusFound, "/login")
		}
		return err
	}
	delete(session.Values, authSessionUserIDKey)
	delete(session.Values, "user")
	session.Options.MaxAge = -1
	if err := session.Save(c.Request(), c.Response()); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, "/login")
}

func (a *AuthRoutes) handleAuthBegin(c echo.Context) error {
	provider := c.Param("provider")
	if provider != githubProvider {
		return c.NoContent(http.StatusNotFound)
	}
	if next := c.QueryParam("next"); next != "" {
		session, err := gothic.Store.Get(c.Request(), authSessionName)
		if err == nil {
			session.Values[authSessionNextKey] = safeNext(next)
			if err := session.Save(c.Request(), c.Response()); err != nil {
				return err
			}
		}
	}
	request := addProviderParam(c.Request(), provider)
	gothic.BeginAuthHandler(c.Response(), request)
	return nil
}

func (a *AuthRoutes) handleAuthCallback(c echo.Context) error {
	provider := c.Param("provider")
	if provider != githubProvider {
		return c.NoContent(http.StatusNotFound)
	}
	request := addProviderParam(c.Request(), provider)
	user, err := gothic.CompleteUserAuth(c.Response(), request)
	if err != nil {
		if isInvalidSecureCookieError(err) {
			clearSessionCookie(c, authSessionName)
			clearSessionCookie(c, gothSessionName)
			return c.Redirect(http.StatusFound, "/login")
		}
		return err
	}

	email := strings.TrimSpace(user.Email)
	if email == "" {
		nick := strings.TrimSpace(user.NickName)
		if nick == "" {
			nick = "user"
		}
		email = nick + "@local.invalid"
	}
	nickname := strings.TrimSpace(user.NickName)
	if nickname == "" {
		nickname = strings.Split(email, "@")[0]
	}

	localUser, err := a.users.SignIn(request.Context(), ports.UpsertUserInput{
		GitHubID:  user.UserID,
		Email:     email,
		Nickname:  nickname,
		Name:      user.Name,
		AvatarURL: user.AvatarURL,
	})
	if err != nil {
		return err
	}
	return a.startSession(c, localUser, "")
}

func (a *AuthRoutes) handleDevLogin(c echo.Context) error {
	if !a.enableDevLogin {
		return c.NoContent(http.StatusNotFound)
	}

	email := strings.TrimSpace(c.FormValue("email"))
	if email == "" {
		email = "dev-user@example.local"
	}
	nickname := strings.TrimSpace(c.FormValue("nickname"))
	if nickname == "" {
		nickname = strings.Split(email, "@")[0]
	}
	name := strings.TrimSpace(c.FormValue("name"))
	if name == "" {
		name = nickname
	}
	githubID := strings.TrimSpace(c.FormValue("github_id"))
	if githubID == "" {
		githubID = "dev:" + nickname
	}

	localUser, err := a.users.SignIn(c.Request().Context(), ports.UpsertUserInput{
		GitHubID:  githubID,
		Email:     email,
		Nickname:  nickname,
		Name:      name,
		AvatarURL: strings.TrimSpace(c.FormValue("avatar_url")),
	})
	if err != nil {
		return err
	}
	return a.startSession(c, localUser, c.FormValue("next"))
}

// startSession stores the user and redirects to next, or to the URL saved
// before the OAuth round trip when next is empty.
func (a *AuthRoutes) startSession(c echo.Context, localUser ports.User, next string) error {
	session, err := gothic.Store.Get(c.Request(), authSessionName)
	if err != nil {
		if isInvalidSecureCookieError(err) {
			clearSessionCookie(c, authSessionName)
			clearSessionCookie(c, gothSessionName)
			return c.Redirect(http.StatusFound, "/login")
		}
		return err
	}
	if next == "" {
		if saved, ok := session.Values[authSessionNextKey].(string); ok {
			next = saved
		}
	}
	delete(session.Values, authSessionNextKey)
	session.Values["user"] = AuthUser{
		ID:        localUser.ID,
		Name:      firstNonEmpty(localUser.Name, localUser.Nickname),
		NickName:  localUser.Nickname,
		Email:     localUser.Email,
		AvatarURL: localUser.AvatarURL,
		Role:      localUser.Role,
	}
	session.Values[authSessionUserIDKey] = localUser.ID
	if err := session.Save(c.Request(), c.Response()); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, safeNext(next))
}

// GetAuthUser returns the authenticated user from request context.
func GetAuthUser(c echo.Context) (AuthUser, bool) {
	value := c.Get("authUser")
	if value == nil {
		return AuthUser{}, false
	}
	user, ok := value.(AuthUser)
	if !ok {
		return AuthUser{}, false
	}
	return user, true
}

// safeNext keeps redirects on this host.
func safeNext(next string) string {
	next = strings.TrimSpace(next)
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return settingsPath
	}
	return next
}

func addProviderParam(request *http.Request, provider string) *http.Request {
	query := request.URL.Query()
	query.Set("provider", provider)
	request.URL.RawQuery = query.Encode()
	return request
}

func authUserFromSession(c echo.Context) (AuthUser, bool) {
	session, err := gothic.Store.Get(c.Request(), authSessionName)
	if err != nil {
		if isInvalidSecureCookieError(err) {
			clearSessionCookie(c, authSessionName)
			clearSessionCookie(c, gothSessionName)
		}
		return AuthUser{}, false
	}
	value, ok := session.Values["user"]
	if !ok {
		return AuthUser{}, false
	}
	user, ok := value.(AuthUser)
	if !ok {
		return AuthUser{}, false
	}
	return user, true
}

func isInvalidSecureCookieError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "securecookie") && strings.Contains(msg, "not valid")
}

func clearSessionCookie(c echo.Context, name string) {
	http.SetCookie(c.Response(), &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   c.Request().TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			return trimmed
		}
	}
	return ""
}
