// Copyright (c) 2026 laezzii.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// User type constants
const (
	TypeGuest  = "guest"
	TypeMember = "member"
	TypeAdmin  = "admin"
)

// Work category constants
const (
	CategoryPhotos   = "Photos"
	CategoryGraphics = "Graphics"
	CategoryVideos   = "Videos"
	CategoryAll      = "All" // themes only
)

// Theme status constants
const (
	ThemeUpcoming = "upcoming"
	ThemeActive   = "active"
	ThemeEnded    = "ended"
)

// Work list sort modes
const (
	SortRecent = "recent"
	SortVotes  = "votes"
)

// ValidUserType reports whether t is a registerable account type.
func ValidUserType(t string) bool {
	return t == TypeGuest || t == TypeMember || t == TypeAdmin
}

// ValidWorkCategory reports whether c is a category a work can carry.
func ValidWorkCategory(c string) bool {
	return c == CategoryPhotos || c == CategoryGraphics || c == CategoryVideos
}

// ValidThemeCategory reports whether c is a category a theme can scope to.
func ValidThemeCategory(c string) bool {
	return c == CategoryAll || ValidWorkCategory(c)
}

// ThemeStatusAt derives a theme's lifecycle status from wall-clock time.
// A theme is active on the closed interval [startsAt, endsAt].
func ThemeStatusAt(startsAt, endsAt, now time.Time) string {
	if now.Before(startsAt) {
		return ThemeUpcoming
	}
	if now.After(endsAt) {
		return ThemeEnded
	}
	return ThemeActive
}

// Request types

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	UserType string `json:"user_type"`
	Cluster  string `json:"cluster"`
	Batch    string `json:"batch"`
	Bio      string `json:"bio"`
}

type LoginRequest struct {
	Email string `json:"email"`
}

type UpdateUserRequest struct {
	Name    string `json:"name"`
	Cluster string `json:"cluster"`
	Batch   string `json:"batch"`
	Bio     string `json:"bio"`
}

type SetRoleRequest struct {
	UserType string `json:"user_type"`
}

type CreateWorkRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	FileURL     string `json:"file_url"`
	ThemeID     string `json:"theme_id,omitempty"`
}

type UpdateWorkRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	FileURL     string `json:"file_url"`
}

type SubmitWorkRequest struct {
	ThemeID string `json:"theme_id"`
}

type CreateVoteRequest struct {
	WorkID  string `json:"work_id"`
	ThemeID string `json:"theme_id,omitempty"`
}

type CreateThemeRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
}

type UpdateThemeRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
}

type CreatePortfolioRequest struct {
	Title string `json:"title"`
	Bio   string `json:"bio"`
}

type UpdatePortfolioRequest struct {
	Title string `json:"title"`
	Bio   string `json:"bio"`
}

// Response types

type AuthResponse struct {
	Success bool `json:"success"`
	User    User `json:"user"`
}

type VerifyResponse struct {
	Success      bool  `json:"success"`
	User         *User `json:"user,omitempty"`
	HasPortfolio bool  `json:"has_portfolio,omitempty"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type UserListResponse struct {
	Users []User `json:"users"`
}

type ThemeListResponse struct {
	Themes []Theme `json:"themes"`
}

type PortfolioListResponse struct {
	Portfolios []PortfolioSummary `json:"portfolios"`
}

// PortfolioSummary is a portfolio row with its owner's display name, used in
// list views.
type PortfolioSummary struct {
	Portfolio
	OwnerName string `json:"owner_name"`
}

type FeaturedResponse struct {
	WorkID   string `json:"work_id"`
	Featured bool   `json:"featured"`
}

type WorkListResponse struct {
	Works []Work `json:"works"`
	Count int    `json:"count"`
}

type VoteResponse struct {
	VoteCount int `json:"vote_count"`
}

type RankingsResponse struct {
	Category string       `json:"category"`
	Works    []RankedWork `json:"works"`
}

// Domain types

type User struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	UserType   string    `json:"user_type"`
	Cluster    string    `json:"cluster,omitempty"`
	Batch      string    `json:"batch,omitempty"`
	Bio        string    `json:"bio,omitempty"`
	IsApproved bool      `json:"is_approved"`
	CreatedAt  time.Time `json:"created_at"`
}

type Work struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	FileURL     string    `json:"file_url"`
	OwnerID     string    `json:"owner_id"`
	ThemeID     *string   `json:"theme_id,omitempty"`
	VoteCount   int       `json:"vote_count"`
	Featured    bool      `json:"featured"`
	CreatedAt   time.Time `json:"created_at"`
}

type Portfolio struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Title      string    `json:"title"`
	Bio        string    `json:"bio,omitempty"`
	TotalVotes int       `json:"total_votes"`
	CreatedAt  time.Time `json:"created_at"`
}

type PortfolioWithWorks struct {
	Portfolio Portfolio `json:"portfolio"`
	Owner     User      `json:"owner"`
	Works     []Work    `json:"works"`
}

type Theme struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	StartsAt     time.Time `json:"starts_at"`
	EndsAt       time.Time `json:"ends_at"`
	Status       string    `json:"status"`
	WinnerWorkID *string   `json:"winner_work_id,omitempty"`
	CreatedBy    string    `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
}

type ThemeWithWorks struct {
	Theme Theme  `json:"theme"`
	Works []Work `json:"works"`
}

type Vote struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	WorkID    string    `json:"work_id"`
	ThemeID   string    `json:"theme_id,omitempty"` // empty = unscoped
	CreatedAt time.Time `json:"created_at"`
}

type RankedWork struct {
	Work
	Rank int `json:"rank"` // 1-indexed ranking
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
