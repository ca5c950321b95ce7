package testbackend

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/alexedwards/argon2id"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/adanyl0v/go-todo-client/internal/models"
)

const userIDCtxKey = "user_id"

var errUserAlreadyExists = errors.New("user already exists")

// Cheap enough to hash on every test registration.
var passwordParams = &argon2id.Params{
	Memory:      16 * 1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,max=255"`
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=255"`
	Name     string `json:"name" binding:"required,max=255"`
}

type authResponse struct {
	Token   string      `json:"token"`
	User    models.User `json:"user"`
	Message string      `json:"message"`
}

func (s *Server) HandleLogin(c *gin.Context) {
	var req loginRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, http.StatusBadRequest, msgInvalidRequestBody)
		return
	}

	s.mu.Lock()
	u, ok := s.users[strings.ToLower(req.Email)]
	s.mu.Unlock()
	if !ok {
		s.logger.Warn().
			Str("email", req.Email).
			Msg("user not found")
		abort(c, http.StatusUnauthorized, msgInvalidCredentials)
		return
	}

	match, err := argon2id.ComparePasswordAndHash(req.Password, u.passwordHash)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to compare password")
		abortStatus(c, http.StatusInternalServerError)
		return
	} else if !match {
		s.logger.Warn().Msg("passwords do not match")
		abort(c, http.StatusUnauthorized, msgInvalidCredentials)
		return
	}

	token, err := s.generateAccessToken(u.ID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate access token")
		abortStatus(c, http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, authResponse{
		Token:   token,
		User:    u.User,
		Message: "login successful",
	})
}

func (s *Server) HandleRegister(c *gin.Context) {
	var req registerRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, http.StatusBadRequest, msgInvalidRequestBody)
		return
	}

	hash, err := argon2id.CreateHash(req.Password, passwordParams)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to hash password")
		abortStatus(c, http.StatusInternalServerError)
		return
	}

	u, err := s.addUser(req.Email, req.Name, hash)
	if err != nil {
		abort(c, http.StatusConflict, err.Error())
		return
	}

	token, err := s.generateAccessToken(u.ID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate access token")
		abortStatus(c, http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusCreated, authResponse{
		Token:   token,
		User:    u.User,
		Message: "user created successfully",
	})
}

// SeedUser registers a user directly, skipping HTTP.
func (s *Server) SeedUser(email, password, name string) (models.User, error) {
	hash, err := argon2id.CreateHash(password, passwordParams)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}
	u, err := s.addUser(email, name, hash)
	if err != nil {
		return models.User{}, err
	}
	return u.User, nil
}

func (s *Server) addUser(email, name, passwordHash string) (*user, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(email)
	if _, exists := s.users[key]; exists {
		s.logger.Warn().
			Str("email", email).
			Msg("user already exists")
		return nil, errUserAlreadyExists
	}

	s.nextUserID++
	u := &user{
		User: models.User{
			ID:    s.nextUserID,
			Email: email,
			Name:  name,
		},
		passwordHash: passwordHash,
	}
	s.users[key] = u
	s.logger.Info().
		Int64("user_id", u.ID).
		Msg("registered user")
	return u, nil
}

func (s *Server) HandleAuthMiddleware(c *gin.Context) {
	const authHeader = "Authorization"
	header := c.GetHeader(authHeader)
	if header == "" {
		s.logger.Error().Msg("authorization header required")
		abort(c, http.StatusUnauthorized, "authorization header required")
		return
	}

	const bearerPrefix = "Bearer"
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != bearerPrefix {
		s.logger.Error().Msg("invalid authorization header")
		abort(c, http.StatusUnauthorized, "invalid authorization header")
		return
	}

	claims, err := s.parseJWTToken(parts[1])
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to parse token")
		abort(c, http.StatusUnauthorized, "invalid token")
		return
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("invalid token subject")
		abort(c, http.StatusUnauthorized, "invalid token")
		return
	}

	c.Set(userIDCtxKey, userID)
	c.Next()
}

func (s *Server) generateAccessToken(userID int64) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Issuer:    jwtIssuer,
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(jwtTokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSigningKey)
}

func (s *Server) parseJWTToken(tokenString string) (*jwt.RegisteredClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (any, error) {
		return s.jwtSigningKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(jwtIssuer))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return nil, fmt.Errorf("failed to parse token claims")
	}
	return claims, nil
}
