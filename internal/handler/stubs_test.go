package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/greenwork/greenwork-api/internal/booking"
	"github.com/greenwork/greenwork-api/internal/model"
	"github.com/greenwork/greenwork-api/internal/repository"
	"github.com/greenwork/greenwork-api/internal/utils"
)

// In-memory stores backing the handler tests.  They mirror the
// repository semantics the handlers rely on: sentinel errors, email
// uniqueness and the conflict check over non-cancelled windows.

type stubUsers struct {
	nextID uint64
	users  map[uint64]model.User
}

func newStubUsers() *stubUsers {
	return &stubUsers{nextID: 1, users: map[uint64]model.User{}}
}

func (s *stubUsers) add(u model.User, password string) model.User {
	hash, _ := utils.HashPassword(password, 4)
	u.ID = s.nextID
	u.Password = hash
	u.Email = strings.ToLower(u.Email)
	s.users[u.ID] = u
	s.nextID++
	return u
}

func (s *stubUsers) Create(_ context.Context, u model.User, password string, _ int) (uint64, error) {
	for _, existing := range s.users {
		if existing.Email == strings.ToLower(u.Email) {
			return 0, repository.ErrEmailExists
		}
	}
	return s.add(u, password).ID, nil
}

func (s *stubUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	for _, u := range s.users {
		if u.Email == strings.ToLower(strings.TrimSpace(email)) {
			return u, nil
		}
	}
	return model.User{}, sql.ErrNoRows
}

func (s *stubUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (s *stubUsers) List(_ context.Context) ([]model.User, error) {
	out := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	return out, nil
}

func (s *stubUsers) Update(_ context.Context, id uint64, p repository.UserPatch, _ int) error {
	u, ok := s.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	if p.Email != nil {
		for otherID, other := range s.users {
			if otherID != id && other.Email == strings.ToLower(*p.Email) {
				return repository.ErrEmailExists
			}
		}
		u.Email = strings.ToLower(*p.Email)
	}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	s.users[id] = u
	return nil
}

func (s *stubUsers) UpdatePassword(_ context.Context, id uint64, current, next string, _ int) error {
	u, ok := s.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	if !utils.VerifyPassword(u.Password, current) {
		return repository.ErrForbidden
	}
	hash, _ := utils.HashPassword(next, 4)
	u.Password = hash
	s.users[id] = u
	return nil
}

func (s *stubUsers) Delete(_ context.Context, id uint64) error {
	if _, ok := s.users[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.users, id)
	return nil
}

type stubTokens struct {
	tokens map[string]model.Token
}

func newStubTokens() *stubTokens {
	return &stubTokens{tokens: map[string]model.Token{}}
}

func (s *stubTokens) Store(_ context.Context, userID uint64, refreshToken string, exp time.Time) error {
	s.tokens[refreshToken] = model.Token{
		ID:           uint64(len(s.tokens) + 1),
		UserID:       userID,
		RefreshToken: refreshToken,
		ExpiresAt:    exp,
	}
	return nil
}

func (s *stubTokens) GetByRefresh(_ context.Context, refreshToken string) (model.Token, error) {
	t, ok := s.tokens[refreshToken]
	if !ok {
		return model.Token{}, sql.ErrNoRows
	}
	return t, nil
}

func (s *stubTokens) Revoke(_ context.Context, refreshToken string) error {
	if t, ok := s.tokens[refreshToken]; ok {
		t.IsRevoked = true
		s.tokens[refreshToken] = t
	}
	return nil
}

func (s *stubTokens) RevokeAllForUser(_ context.Context, userID uint64) error {
	for raw, t := range s.tokens {
		if t.UserID == userID {
			t.IsRevoked = true
			s.tokens[raw] = t
		}
	}
	return nil
}

// activeFor counts non-revoked tokens held by a user.
func (s *stubTokens) activeFor(userID uint64) int {
	n := 0
	for _, t := range s.tokens {
		if t.UserID == userID && !t.IsRevoked {
			n++
		}
	}
	return n
}

type stubCompanies struct {
	nextID    uint64
	companies map[uint64]model.Company
}

func newStubCompanies() *stubCompanies {
	return &stubCompanies{nextID: 1, companies: map[uint64]model.Company{}}
}

func (s *stubCompanies) Create(_ context.Context, c model.Company) (uint64, error) {
	for _, existing := range s.companies {
		if existing.Email == c.Email {
			return 0, repository.ErrEmailExists
		}
	}
	c.ID = s.nextID
	s.companies[c.ID] = c
	s.nextID++
	return c.ID, nil
}

func (s *stubCompanies) GetByID(_ context.Context, id uint64) (model.Company, error) {
	c, ok := s.companies[id]
	if !ok {
		return model.Company{}, sql.ErrNoRows
	}
	return c, nil
}

func (s *stubCompanies) List(_ context.Context) ([]model.Company, error) {
	out := make([]model.Company, 0, len(s.companies))
	for _, c := range s.companies {
		out = append(out, c)
	}
	return out, nil
}

func (s *stubCompanies) ListByUser(_ context.Context, userID uint64) ([]model.Company, error) {
	var out []model.Company
	for _, c := range s.companies {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *stubCompanies) Update(_ context.Context, id uint64, p repository.CompanyPatch) error {
	c, ok := s.companies[id]
	if !ok {
		return sql.ErrNoRows
	}
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Email != nil {
		for otherID, other := range s.companies {
			if otherID != id && other.Email == *p.Email {
				return repository.ErrEmailExists
			}
		}
		c.Email = *p.Email
	}
	s.companies[id] = c
	return nil
}

func (s *stubCompanies) Delete(_ context.Context, id uint64) error {
	if _, ok := s.companies[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.companies, id)
	return nil
}

type stubRooms struct {
	nextID uint64
	rooms  map[uint64]model.Room
}

func newStubRooms() *stubRooms {
	return &stubRooms{nextID: 1, rooms: map[uint64]model.Room{}}
}

func (s *stubRooms) Create(_ context.Context, rm model.Room) (uint64, error) {
	rm.ID = s.nextID
	if rm.Status == "" {
		rm.Status = model.RoomStatusAvailable
	}
	s.rooms[rm.ID] = rm
	s.nextID++
	return rm.ID, nil
}

func (s *stubRooms) GetByID(_ context.Context, id uint64) (model.Room, error) {
	r, ok := s.rooms[id]
	if !ok {
		return model.Room{}, sql.ErrNoRows
	}
	return r, nil
}

func (s *stubRooms) List(_ context.Context) ([]model.Room, error) {
	out := make([]model.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		out = append(out, r)
	}
	return out, nil
}

func (s *stubRooms) ListByCompany(_ context.Context, companyID uint64) ([]model.Room, error) {
	var out []model.Room
	for _, r := range s.rooms {
		if r.CompanyID == companyID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubRooms) Update(_ context.Context, id uint64, p repository.RoomPatch) error {
	r, ok := s.rooms[id]
	if !ok {
		return sql.ErrNoRows
	}
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
	s.rooms[id] = r
	return nil
}

func (s *stubRooms) Delete(_ context.Context, id uint64) error {
	if _, ok := s.rooms[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.rooms, id)
	return nil
}

// stubReservations re-implements the conflict-checked write path over
// a slice, using the same booking engine as the real store.
type stubReservations struct {
	nextID       uint64
	reservations []model.Reservation

	createCalls int  // conflict-checked inserts attempted
	lastRecheck bool // recheck flag of the last UpdateChecked
}

func newStubReservations() *stubReservations {
	return &stubReservations{nextID: 1}
}

func (s *stubReservations) occupied(roomID uint64, date string, excludeID uint64) []booking.Window {
	var out []booking.Window
	for _, r := range s.reservations {
		if r.RoomID != roomID || r.Date != date || r.ID == excludeID {
			continue
		}
		if r.Status == model.ReservationStatusCancelled {
			continue
		}
		out = append(out, booking.Window{Start: r.StartTime, End: r.EndTime})
	}
	return out
}

func (s *stubReservations) CreateChecked(_ context.Context, res *model.Reservation) error {
	s.createCalls++
	candidate := booking.Window{Start: res.StartTime, End: res.EndTime}
	if conflicts := booking.Conflicts(candidate, s.occupied(res.RoomID, res.Date, 0)); len(conflicts) > 0 {
		return &repository.TimeConflictError{Occupied: conflicts}
	}
	res.ID = s.nextID
	s.nextID++
	s.reservations = append(s.reservations, *res)
	return nil
}

func (s *stubReservations) UpdateChecked(_ context.Context, merged model.Reservation, recheck bool) error {
	s.lastRecheck = recheck
	if recheck {
		candidate := booking.Window{Start: merged.StartTime, End: merged.EndTime}
		if conflicts := booking.Conflicts(candidate, s.occupied(merged.RoomID, merged.Date, merged.ID)); len(conflicts) > 0 {
			return &repository.TimeConflictError{Occupied: conflicts}
		}
	}
	for i, r := range s.reservations {
		if r.ID == merged.ID {
			s.reservations[i] = merged
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *stubReservations) Cancel(_ context.Context, id uint64) error {
	for i, r := range s.reservations {
		if r.ID == id {
			s.reservations[i].Status = model.ReservationStatusCancelled
			return nil
		}
	}
	return nil
}

func (s *stubReservations) Delete(_ context.Context, id uint64) error {
	for i, r := range s.reservations {
		if r.ID == id {
			s.reservations = append(s.reservations[:i], s.reservations[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *stubReservations) GetByID(_ context.Context, id uint64) (model.Reservation, error) {
	for _, r := range s.reservations {
		if r.ID == id {
			return r, nil
		}
	}
	return model.Reservation{}, sql.ErrNoRows
}

func (s *stubReservations) List(_ context.Context) ([]model.Reservation, error) {
	return append([]model.Reservation(nil), s.reservations...), nil
}

func (s *stubReservations) ListByUser(_ context.Context, userID uint64) ([]model.Reservation, error) {
	var out []model.Reservation
	for _, r := range s.reservations {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubReservations) ListByRoom(_ context.Context, roomID uint64) ([]model.Reservation, error) {
	var out []model.Reservation
	for _, r := range s.reservations {
		if r.RoomID == roomID {
			out = append(out, r)
		}
	}
	return out, nil
}

type stubImages struct {
	nextID uint64
	images map[uint64]model.Image
}

func newStubImages() *stubImages {
	return &stubImages{nextID: 1, images: map[uint64]model.Image{}}
}

func (s *stubImages) Create(_ context.Context, name, data string) (uint64, error) {
	id := s.nextID
	s.nextID++
	s.images[id] = model.Image{IDImage: id, Name: name, Data: data}
	return id, nil
}

func (s *stubImages) GetByID(_ context.Context, id uint64) (model.Image, error) {
	img, ok := s.images[id]
	if !ok {
		return model.Image{}, sql.ErrNoRows
	}
	return img, nil
}

func (s *stubImages) GetByName(_ context.Context, name string) (model.Image, error) {
	for _, img := range s.images {
		if img.Name == name {
			return img, nil
		}
	}
	return model.Image{}, sql.ErrNoRows
}

func (s *stubImages) List(_ context.Context) ([]model.Image, error) {
	out := make([]model.Image, 0, len(s.images))
	for _, img := range s.images {
		out = append(out, model.Image{IDImage: img.IDImage, Name: img.Name})
	}
	return out, nil
}

func (s *stubImages) Update(_ context.Context, id uint64, p repository.ImagePatch) error {
	img, ok := s.images[id]
	if !ok {
		return sql.ErrNoRows
	}
	if p.Name != nil {
		img.Name = *p.Name
	}
	if p.Data != nil {
		img.Data = *p.Data
	}
	s.images[id] = img
	return nil
}

func (s *stubImages) Delete(_ context.Context, id uint64) error {
	if _, ok := s.images[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.images, id)
	return nil
}

// newJSONContext builds an echo context carrying a JSON body.
func newJSONContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}
