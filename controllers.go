package main

import (
	"encoding/json"
	"errors"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// App carries the injected connection pool and configuration. Every
// handler is a method on it.
type App struct {
	db  *gorm.DB
	cfg Config
}

func NewApp(db *gorm.DB, cfg Config) *App {
	return &App{db: db, cfg: cfg}
}

// -----------------------------
// Helper functions
// -----------------------------

func (a *App) jsonError(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{"error": msg})
}

// jsonErrorDetail includes the raw driver error as "details" outside
// production. In production only the generic message goes out; the
// detail is logged instead.
func (a *App) jsonErrorDetail(c *gin.Context, code int, msg string, err error) {
	log.Printf("%s: %v", msg, err)
	if a.cfg.IsProduction() {
		c.JSON(code, gin.H{"error": msg})
		return
	}
	c.JSON(code, gin.H{"error": msg, "details": err.Error()})
}

// parseID accepts a JSON number or a numeric string, mirroring what
// frontends actually send.
func parseID(v any) (uint, bool) {
	switch n := v.(type) {
	case float64:
		if n < 0 || n > float64(^uint32(0)) || n != math.Trunc(n) {
			return 0, false
		}
		return uint(n), true
	case string:
		id, err := strconv.ParseUint(strings.TrimSpace(n), 10, 32)
		if err != nil {
			return 0, false
		}
		return uint(id), true
	case json.Number:
		id, err := strconv.ParseUint(n.String(), 10, 32)
		if err != nil {
			return 0, false
		}
		return uint(id), true
	default:
		return 0, false
	}
}

func parsePathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// -----------------------------
// Health
// -----------------------------

// HealthCheck handles GET /api/test.
func (a *App) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "API is working correctly"})
}

// -----------------------------
// Events
// -----------------------------

// ListEvents handles GET /api/events.
func (a *App) ListEvents(c *gin.Context) {
	events := make([]Event, 0)
	if err := a.db.Find(&events).Error; err != nil {
		a.jsonErrorDetail(c, http.StatusInternalServerError, "Database query failed", err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// GetEvent handles GET /api/events/:eventId. The date is rendered
// human-readable ("March 5, 2024") and the fields renamed for the
// event-detail page.
func (a *App) GetEvent(c *gin.Context) {
	eventID, ok := parsePathID(c, "eventId")
	if !ok {
		a.jsonError(c, http.StatusBadRequest, "Invalid eventId format. Must be a number.")
		return
	}

	var ev Event
	if err := a.db.First(&ev, eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			a.jsonError(c, http.StatusNotFound, "Event not found")
			return
		}
		a.jsonErrorDetail(c, http.StatusInternalServerError, "Failed to fetch event", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":          ev.EventID,
		"eventName":   ev.EventName,
		"description": ev.EventDescription,
		"date":        ev.EventDate.Format("January 2, 2006"),
		"location":    ev.EventLocation,
		"image":       ev.EventImage,
	})
}

// -----------------------------
// Users
// -----------------------------

type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateUser handles POST /api/users. The duplicate pre-check gives a
// friendly message; the unique constraints on username and email catch
// the race where two requests pass the check together.
func (a *App) CreateUser(c *gin.Context) {
	var body CreateUserRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		a.jsonError(c, http.StatusBadRequest, "Missing required fields")
		return
	}
	if body.Username == "" || body.Email == "" || body.Password == "" {
		a.jsonError(c, http.StatusBadRequest, "Missing required fields")
		return
	}

	var existing User
	err := a.db.Where("username = ? OR email = ?", body.Username, body.Email).First(&existing).Error
	if err == nil {
		a.jsonError(c, http.StatusBadRequest, "Username or email already exists")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		a.jsonErrorDetail(c, http.StatusInternalServerError, "Registration failed", err)
		return
	}

	hash, err := HashPassword(body.Password)
	if err != nil {
		a.jsonErrorDetail(c, http.StatusInternalServerError, "Registration failed", err)
		return
	}

	user := User{
		Username: body.Username,
		Email:    body.Email,
		Password: hash,
	}
	if err := a.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			a.jsonError(c, http.StatusBadRequest, "Username or email already exists")
			return
		}
		a.jsonErrorDetail(c, http.StatusInternalServerError, "Registration failed", err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// GetUserProfile handles GET /api/users/:userId.
func (a *App) GetUserProfile(c *gin.Context) {
	userID, ok := parsePathID(c, "userId")
	if !ok {
		a.jsonError(c, http.StatusBadRequest, "Invalid userId format. Must be a number.")
		return
	}

	var user User
	if err := a.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			a.jsonError(c, http.StatusNotFound, "User not found")
			return
		}
		a.jsonErrorDetail(c, http.StatusInternalServerError, "Failed to fetch user profile", err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// -----------------------------
// Login
// -----------------------------

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles POST /api/login. Unknown username and wrong password
// return the same 401 so the response doesn't reveal which one failed.
func (a *App) Login(c *gin.Context) {
	var body LoginRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		a.jsonError(c, http.StatusBadRequest, "Username and password are required")
		return
	}
	if body.Username == "" || body.Password == "" {
		a.jsonError(c, http.StatusBadRequest, "Username and password are required")
		return
	}

	var user User
	if err := a.db.Where("username = ?", body.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			a.jsonError(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		a.jsonErrorDetail(c, http.StatusInternalServerError, "Login failed", err)
		return
	}

	if !CheckPassword(user.Password, body.Password) {
		a.jsonError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := GenerateToken(user.UserID, a.cfg.JWTSecret)
	if err != nil {
		a.jsonErrorDetail(c, http.StatusInternalServerError, "Failed to generate token", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
		"token":   token,
	})
}

// -----------------------------
// Event registration
// -----------------------------

type RegisterEventRequest struct {
	UserID     any    `json:"userId"`
	EventID    any    `json:"eventId"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	EventTitle string `json:"eventTitle"`
}

var errAlreadyRegistered = errors.New("already registered")

// RegisterEvent handles POST /api/register-event. Existence checks run
// first for friendly 404s, then the duplicate check and insert share a
// transaction so a concurrent duplicate either loses the race inside
// the transaction or hits the unique index.
func (a *App) RegisterEvent(c *gin.Context) {
	var body RegisterEventRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		a.jsonError(c, http.StatusBadRequest, "Missing required fields")
		return
	}
	if body.UserID == nil || body.EventID == nil || body.Username == "" || body.Email == "" || body.EventTitle == "" {
		a.jsonError(c, http.StatusBadRequest, "Missing required fields")
		return
	}

	userID, okUser := parseID(body.UserID)
	eventID, okEvent := parseID(body.EventID)
	if !okUser || !okEvent {
		a.jsonError(c, http.StatusBadRequest, "Invalid userId or eventId format. Must be numbers.")
		return
	}

	var user User
	if err := a.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			a.jsonError(c, http.StatusNotFound, "User not found")
			return
		}
		a.jsonErrorDetail(c, http.StatusInternalServerError, "Failed to register for event", err)
		return
	}

	var ev Event
	if err := a.db.First(&ev, eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			a.jsonError(c, http.StatusNotFound, "Event not found")
			return
		}
		a.jsonErrorDetail(c, http.StatusInternalServerError, "Failed to register for event", err)
		return
	}

	registration := UserEvent{
		UserID:           userID,
		EventID:          eventID,
		Username:         body.Username,
		Email:            body.Email,
		EventTitle:       body.EventTitle,
		RegistrationDate: time.Now().UTC(),
	}

	err := a.db.Transaction(func(tx *gorm.DB) error {
		var existing UserEvent
		err := tx.Where(`"userId" = ? AND "eventId" = ?`, userID, eventID).First(&existing).Error
		if err == nil {
			return errAlreadyRegistered
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		res := tx.Create(&registration)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.New("insert affected no rows")
		}
		return nil
	})

	switch {
	case err == nil:
		c.JSON(http.StatusCreated, gin.H{
			"message": "Successfully registered for event",
			"data":    registration,
		})
	case errors.Is(err, errAlreadyRegistered), errors.Is(err, gorm.ErrDuplicatedKey):
		a.jsonError(c, http.StatusBadRequest, "User is already registered for this event")
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		a.jsonErrorDetail(c, http.StatusBadRequest,
			"Registration failed due to foreign key constraint. User or event may not exist.", err)
	default:
		a.jsonErrorDetail(c, http.StatusInternalServerError, "Failed to register for event", err)
	}
}

// GetUserEvents handles GET /api/user-events/:userId, newest
// registration first.
func (a *App) GetUserEvents(c *gin.Context) {
	userID, ok := parsePathID(c, "userId")
	if !ok {
		a.jsonError(c, http.StatusBadRequest, "Invalid userId format. Must be a number.")
		return
	}

	rows := make([]UserEventDetail, 0)
	err := a.db.
		Table(`"UserEvents" AS ue`).
		Select(`ue."registrationId", ue."eventId", ue."userId", ue."username", ue."email", ue."eventTitle", ue."registrationDate", e."eventDate", e."eventLocation", e."eventDescription"`).
		Joins(`LEFT JOIN "Events" e ON ue."eventId" = e."eventId"`).
		Where(`ue."userId" = ?`, userID).
		Order(`ue."registrationDate" DESC`).
		Scan(&rows).Error
	if err != nil {
		a.jsonErrorDetail(c, http.StatusInternalServerError, "Failed to fetch user events", err)
		return
	}

	c.JSON(http.StatusOK, rows)
}
