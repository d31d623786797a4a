package travelapi

import (
	"context"
	"net/http"
)

// LoginResult carries the bearer token issued by the backend.
type LoginResult struct {
	Token string    `json:"token"`
	User  AdminUser `json:"user"`
}

// Login exchanges admin credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	body := map[string]string{"email": email, "password": password}
	var result LoginResult
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", nil, body, &result); err != nil {
		return LoginResult{}, err
	}
	return result, nil
}

// Me returns the administrator tied to the current token.
func (c *Client) Me(ctx context.Context) (AdminUser, error) {
	var payload struct {
		User AdminUser `json:"user"`
	}
	if err := c.getJSON(ctx, "/admin/me", nil, &payload); err != nil {
		return AdminUser{}, err
	}
	return payload.User, nil
}

// ListPackages returns every package, archived ones included.
func (c *Client) ListPackages(ctx context.Context) ([]Package, error) {
	var payload struct {
		Packages []Package `json:"packages"`
	}
	if err := c.getJSON(ctx, "/admin/packages", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Packages, nil
}

// CreatePackage creates a new package.
func (c *Client) CreatePackage(ctx context.Context, input PackageInput) (Package, error) {
	var payload struct {
		Package Package `json:"package"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/admin/packages", nil, input, &payload); err != nil {
		return Package{}, err
	}
	return payload.Package, nil
}

// UpdatePackage applies a partial update to a package.
func (c *Client) UpdatePackage(ctx context.Context, id string, patch PackagePatch) (Package, error) {
	var payload struct {
		Package Package `json:"package"`
	}
	if err := c.doJSON(ctx, http.MethodPatch, "/admin/packages/"+id, nil, patch, &payload); err != nil {
		return Package{}, err
	}
	return payload.Package, nil
}

// ArchivePackage soft-deletes a package; the backend flips it to archived.
func (c *Client) ArchivePackage(ctx context.Context, id string) (Package, error) {
	var payload struct {
		Package Package `json:"package"`
	}
	if err := c.doJSON(ctx, http.MethodDelete, "/admin/packages/"+id, nil, nil, &payload); err != nil {
		return Package{}, err
	}
	return payload.Package, nil
}

// ListBookings returns every booking.
func (c *Client) ListBookings(ctx context.Context) ([]Booking, error) {
	var payload struct {
		Bookings []Booking `json:"bookings"`
	}
	if err := c.getJSON(ctx, "/admin/bookings", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Bookings, nil
}

// UpdateBooking updates the status and/or notes of a booking.
func (c *Client) UpdateBooking(ctx context.Context, id string, patch BookingPatch) (Booking, error) {
	var payload struct {
		Booking Booking `json:"booking"`
	}
	if err := c.doJSON(ctx, http.MethodPatch, "/admin/bookings/"+id, nil, patch, &payload); err != nil {
		return Booking{}, err
	}
	return payload.Booking, nil
}

// Settings returns the site settings document, nil when none exists yet.
func (c *Client) Settings(ctx context.Context) (*Settings, error) {
	var payload struct {
		Settings *Settings `json:"settings"`
	}
	if err := c.getJSON(ctx, "/admin/settings", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Settings, nil
}

// UpdateSettings applies a partial settings update and returns the stored
// document. The backend mounts the settings write at /settings, not under
// /admin; only the read lives at /admin/settings.
func (c *Client) UpdateSettings(ctx context.Context, patch Settings) (Settings, error) {
	var payload struct {
		Settings Settings `json:"settings"`
	}
	if err := c.doJSON(ctx, http.MethodPatch, "/settings", nil, patch, &payload); err != nil {
		return Settings{}, err
	}
	return payload.Settings, nil
}
