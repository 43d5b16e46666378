// Copyright (c) 2026 laezzii.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - SignupRequest: name, email, user_type, cluster, batch, bio
  - LoginRequest: email
  - CreateWorkRequest: title, description, category, file_url, theme_id
  - SubmitWorkRequest: theme_id
  - CreateVoteRequest: work_id, theme_id
  - CreateThemeRequest: title, description, category, starts_at, ends_at
  - CreatePortfolioRequest: title, bio

# Response Types

Types for JSON responses:

  - AuthResponse: success, user
  - VerifyResponse: success, user, has_portfolio
  - WorkListResponse: works, count
  - VoteResponse: vote_count
  - RankingsResponse: category, works (with 1-indexed ranks)
  - ErrorResponse: error, message

# Domain Types

Internal data structures:

  - User: account identity, role, and approval state
  - Work: an uploaded creative work with its denormalized vote count
  - Portfolio: a member's work list and denormalized vote total
  - Theme: a time-boxed voting campaign with derived lifecycle status
  - Vote: one (user, work, theme) vote; empty theme means unscoped

# Constants

Account types:

	TypeGuest  = "guest"
	TypeMember = "member"
	TypeAdmin  = "admin"

Categories:

	CategoryPhotos   = "Photos"
	CategoryGraphics = "Graphics"
	CategoryVideos   = "Videos"
	CategoryAll      = "All"

Theme statuses:

	ThemeUpcoming = "upcoming"
	ThemeActive   = "active"
	ThemeEnded    = "ended"

# Theme Status Derivation

ThemeStatusAt computes a theme's status purely from timestamps:

	status := models.ThemeStatusAt(startsAt, endsAt, time.Now())

Upcoming before startsAt, active on [startsAt, endsAt], ended after endsAt.
*/
package models
