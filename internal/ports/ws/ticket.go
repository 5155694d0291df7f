package ws

import (
	"errors"
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"
	"github.com/google/uuid"
)

const (
	TicketIssuer     = "blackjackd"
	DefaultTicketTTL = 10 * time.Minute
)

var (
	ErrTicketRequired = errors.New("seat ticket required")
	ErrInvalidTicket  = errors.New("invalid seat ticket")
)

// TicketService signs and checks HS256 seat tickets for the WebSocket endpoint.
type TicketService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTicketService(secret string, ttl time.Duration) (*TicketService, error) {
	if secret == "" {
		return nil, fmt.Errorf("ticket secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTicketTTL
	}
	return &TicketService{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue returns a signed ticket for subject.
func (s *TicketService) Issue(subject string) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("subject is required")
	}
	now := s.now()
	claims := jwt.MapClaims{
		"iss": TicketIssuer,
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(s.ttl).Unix(),
		"jti": uuid.NewString(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks signature, expiry and issuer and returns the subject.
func (s *TicketService) Verify(ticket string) (string, error) {
	if ticket == "" {
		return "", ErrTicketRequired
	}
	token, err := jwt.Parse(ticket, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidTicket, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidTicket
	}
	if !claims.VerifyIssuer(TicketIssuer, true) {
		return "", fmt.Errorf("%w: wrong issuer", ErrInvalidTicket)
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidTicket)
	}
	return sub, nil
}
