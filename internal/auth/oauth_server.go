package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	internalmodels "github.com/franciscosanchezn/gin-foodplanner-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/go-oauth2/oauth2/v4"
	oauth2errors "github.com/go-oauth2/oauth2/v4/errors"
	"github.com/go-oauth2/oauth2/v4/manage"
	"github.com/go-oauth2/oauth2/v4/server"
	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ClientTokenTTL is the lifetime of access tokens issued to API clients
const ClientTokenTTL = 2 * time.Hour

type OAuthService struct {
	server *server.Server
	db     *gorm.DB
}

// NewOAuthService builds an OAuth2 server that only serves the client_credentials grant.
// Issued tokens carry the uid and role of the user owning the client.
func NewOAuthService(db *gorm.DB, jwtSecret string) *OAuthService {
	manager := manage.NewDefaultManager()
	manager.SetClientTokenCfg(&manage.Config{AccessTokenExp: ClientTokenTTL})

	manager.MapAccessGenerate(NewCustomJWTAccessGenerate([]byte(jwtSecret), jwt.SigningMethodHS256, db))
	manager.MustTokenStorage(NewGormTokenStore(db), nil)
	manager.MapClientStorage(NewGormClientStore(db))

	srv := server.NewDefaultServer(manager)
	srv.SetAllowedGrantType(oauth2.ClientCredentials)
	srv.SetClientInfoHandler(clientInfoHandler)

	o := &OAuthService{server: srv, db: db}
	srv.SetClientScopeHandler(o.clientScopeHandler)
	srv.SetInternalErrorHandler(func(err error) *oauth2errors.Response {
		log.WithError(err).Error("OAuth2 internal error")
		return nil
	})
	srv.SetResponseErrorHandler(func(re *oauth2errors.Response) {
		log.WithFields(log.Fields{
			"error":       re.Error,
			"status_code": re.StatusCode,
		}).Warn("OAuth2 token request rejected")
	})

	return o
}

func (o *OAuthService) GetServer() *server.Server {
	return o.server
}

// HandleToken handles the token endpoint
// @Summary Token Endpoint
// @Description Obtain an access token using the client credentials grant
// @Tags OAuth2
// @Accept application/x-www-form-urlencoded
// @Produce json
// @Param grant_type formData string true "Grant type: client_credentials"
// @Param client_id formData string true "Client ID"
// @Param client_secret formData string true "Client Secret"
// @Param scope formData string false "Space separated scopes"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.OAuth2Error
// @Failure 401 {object} models.OAuth2Error
// @Router /api/v1/oauth/token [post]
func (o *OAuthService) HandleToken(c *gin.Context) {
	if err := o.server.HandleTokenRequest(c.Writer, c.Request); err != nil {
		c.JSON(http.StatusBadRequest, internalmodels.NewOAuth2Error(internalmodels.ErrInvalidRequest, err.Error()))
	}
}

// clientInfoHandler accepts credentials from the form body or HTTP basic auth
func clientInfoHandler(r *http.Request) (string, string, error) {
	if id, secret, err := server.ClientFormHandler(r); err == nil {
		return id, secret, nil
	}
	return server.ClientBasicHandler(r)
}

// clientScopeHandler only allows scopes registered on the client
func (o *OAuthService) clientScopeHandler(tgr *oauth2.TokenGenerateRequest) (bool, error) {
	if tgr.Scope == "" {
		return true, nil
	}

	var client internalmodels.OAuthClient
	if err := o.db.Where("id = ?", tgr.ClientID).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	allowed := make(map[string]bool)
	for _, s := range splitScopes(client.Scopes) {
		allowed[s] = true
	}
	for _, s := range splitScopes(tgr.Scope) {
		if !allowed[s] {
			return false, nil
		}
	}
	return true, nil
}

// splitScopes accepts space or comma separated scope lists
func splitScopes(scopes string) []string {
	return strings.FieldsFunc(scopes, func(r rune) bool {
		return r == ' ' || r == ','
	})
}
