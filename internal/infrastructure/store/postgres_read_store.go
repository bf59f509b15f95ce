package store

import (
	"database/sql"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/example/bookshop-event-driven/internal/readmodel"
)

// PostgresReadStore implements ReadStoreInterface using PostgreSQL.
// Nested collections (cart items, bill lines, promo rules) are stored as
// JSONB so the projector can write whole documents in one statement.
type PostgresReadStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewPostgresReadStore creates a new PostgreSQL-based read store
func NewPostgresReadStore(db *sql.DB) *PostgresReadStore {
	return &PostgresReadStore{db: db}
}

// Set stores a read model
func (rs *PostgresReadStore) Set(collection, id string, data any) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.setUnsafe(collection, id, data)
}

func (rs *PostgresReadStore) setUnsafe(collection, id string, data any) error {
	switch collection {
	case "books":
		return rs.setBook(data.(*readmodel.BookReadModel))
	case "carts":
		return rs.setCart(data.(*readmodel.CartReadModel))
	case "bills":
		return rs.setBill(data.(*readmodel.BillReadModel))
	case "inventory":
		return rs.setInventory(data.(*readmodel.InventoryReadModel))
	case "users":
		return rs.setUser(data.(*readmodel.UserReadModel))
	case "sessions":
		return rs.setSession(data.(*readmodel.SessionReadModel))
	case "categories":
		return rs.setCategory(data.(*readmodel.CategoryReadModel))
	case "promo_events":
		return rs.setPromoEvent(data.(*readmodel.PromoEventReadModel))
	case "promo_usage":
		return rs.setPromoUsage(id, data.(*readmodel.PromoUsageReadModel))
	}
	return nil
}

// Get retrieves a read model by id
func (rs *PostgresReadStore) Get(collection, id string) (any, bool, error) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.getUnsafe(collection, id)
}

func (rs *PostgresReadStore) getUnsafe(collection, id string) (any, bool, error) {
	switch collection {
	case "books":
		return asAny(rs.getBook(id))
	case "carts":
		return asAny(rs.getCart(id))
	case "bills":
		return asAny(rs.getBill(id))
	case "inventory":
		return asAny(rs.getInventory(id))
	case "users":
		return asAny(rs.getUser(id))
	case "sessions":
		return asAny(rs.getSession(id))
	case "categories":
		return asAny(rs.getCategory(id))
	case "promo_events":
		return asAny(rs.getPromoEvent(id))
	case "promo_usage":
		return asAny(rs.getPromoUsage(id))
	}
	return nil, false, nil
}

// asAny widens a typed (model, found, err) triple for the interface
func asAny[T any](v *T, found bool, err error) (any, bool, error) {
	if !found || err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// GetAll retrieves all items in a collection
func (rs *PostgresReadStore) GetAll(collection string) ([]any, error) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	switch collection {
	case "books":
		return rs.getAllBooks()
	case "carts":
		return rs.getAllCarts()
	case "bills":
		return rs.getAllBills()
	case "inventory":
		return rs.getAllInventory()
	case "users":
		return rs.getAllUsers()
	case "sessions":
		return rs.getAllSessions()
	case "categories":
		return rs.getAllCategories()
	case "promo_events":
		return rs.getAllPromoEvents()
	case "promo_usage":
		return rs.getAllPromoUsage()
	}
	return nil, nil
}

// Delete removes a read model
func (rs *PostgresReadStore) Delete(collection, id string) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	table, keyCol := tableFor(collection)
	if table == "" {
		return nil
	}

	_, err := rs.db.Exec("DELETE FROM "+table+" WHERE "+keyCol+" = $1", id)
	return err
}

func tableFor(collection string) (table, keyCol string) {
	switch collection {
	case "books":
		return "read_books", "id"
	case "carts":
		return "read_carts", "id"
	case "bills":
		return "read_bills", "id"
	case "inventory":
		return "read_inventory", "book_id"
	case "users":
		return "read_users", "id"
	case "sessions":
		return "user_sessions", "id"
	case "categories":
		return "read_categories", "id"
	case "promo_events":
		return "read_promo_events", "id"
	case "promo_usage":
		return "read_promo_usage", "usage_key"
	}
	return "", ""
}

// Update modifies a read model using an update function
func (rs *PostgresReadStore) Update(collection, id string, updateFn func(current any) any) (bool, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	current, found, err := rs.getUnsafe(collection, id)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}

	updated := updateFn(current)
	if err := rs.setUnsafe(collection, id, updated); err != nil {
		return false, err
	}
	return true, nil
}

// Book operations

func (rs *PostgresReadStore) setBook(b *readmodel.BookReadModel) error {
	categoryIDs, _ := json.Marshal(b.CategoryIDs)
	_, err := rs.db.Exec(`
		INSERT INTO read_books (id, title, description, price, stock, author_id, publisher_id, series_id, category_ids, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			stock = EXCLUDED.stock,
			author_id = EXCLUDED.author_id,
			publisher_id = EXCLUDED.publisher_id,
			series_id = EXCLUDED.series_id,
			category_ids = EXCLUDED.category_ids,
			image_url = EXCLUDED.image_url,
			updated_at = EXCLUDED.updated_at
	`, b.ID, b.Title, b.Description, b.Price, b.Stock,
		nullString(b.AuthorID), nullString(b.PublisherID), nullString(b.SeriesID),
		categoryIDs, nullString(b.ImageURL), b.CreatedAt, b.UpdatedAt)
	return err
}

func (rs *PostgresReadStore) getBook(id string) (*readmodel.BookReadModel, bool, error) {
	var b readmodel.BookReadModel
	var authorID, publisherID, seriesID, imageURL sql.NullString
	var categoryIDs []byte
	err := rs.db.QueryRow(`
		SELECT id, title, description, price, stock, author_id, publisher_id, series_id, category_ids, image_url, created_at, updated_at
		FROM read_books WHERE id = $1
	`, id).Scan(&b.ID, &b.Title, &b.Description, &b.Price, &b.Stock,
		&authorID, &publisherID, &seriesID, &categoryIDs, &imageURL, &b.CreatedAt, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	b.AuthorID = authorID.String
	b.PublisherID = publisherID.String
	b.SeriesID = seriesID.String
	b.ImageURL = imageURL.String
	json.Unmarshal(categoryIDs, &b.CategoryIDs)
	return &b, true, nil
}

func (rs *PostgresReadStore) getAllBooks() ([]any, error) {
	rows, err := rs.db.Query(`
		SELECT id, title, description, price, stock, author_id, publisher_id, series_id, category_ids, image_url, created_at, updated_at
		FROM read_books ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []any
	for rows.Next() {
		var b readmodel.BookReadModel
		var authorID, publisherID, seriesID, imageURL sql.NullString
		var categoryIDs []byte
		if err := rows.Scan(&b.ID, &b.Title, &b.Description, &b.Price, &b.Stock,
			&authorID, &publisherID, &seriesID, &categoryIDs, &imageURL, &b.CreatedAt, &b.UpdatedAt); err != nil {
			log.Printf("[PostgresReadStore] Error scanning book: %v", err)
			continue
		}
		b.AuthorID = authorID.String
		b.PublisherID = publisherID.String
		b.SeriesID = seriesID.String
		b.ImageURL = imageURL.String
		json.Unmarshal(categoryIDs, &b.CategoryIDs)
		books = append(books, &b)
	}
	return books, nil
}

// Cart operations

func (rs *PostgresReadStore) setCart(c *readmodel.CartReadModel) error {
	itemsJSON, _ := json.Marshal(c.Items)
	_, err := rs.db.Exec(`
		INSERT INTO read_carts (id, user_id, items, total, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			items = EXCLUDED.items,
			total = EXCLUDED.total,
			updated_at = EXCLUDED.updated_at
	`, c.ID, c.UserID, itemsJSON, c.Total, time.Now())
	return err
}

func (rs *PostgresReadStore) getCart(id string) (*readmodel.CartReadModel, bool, error) {
	var c readmodel.CartReadModel
	var itemsJSON []byte
	err := rs.db.QueryRow(`
		SELECT id, user_id, items, total FROM read_carts WHERE id = $1
	`, id).Scan(&c.ID, &c.UserID, &itemsJSON, &c.Total)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	json.Unmarshal(itemsJSON, &c.Items)
	return &c, true, nil
}

func (rs *PostgresReadStore) getAllCarts() ([]any, error) {
	rows, err := rs.db.Query(`SELECT id, user_id, items, total FROM read_carts`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var carts []any
	for rows.Next() {
		var c readmodel.CartReadModel
		var itemsJSON []byte
		if err := rows.Scan(&c.ID, &c.UserID, &itemsJSON, &c.Total); err != nil {
			log.Printf("[PostgresReadStore] Error scanning cart: %v", err)
			continue
		}
		json.Unmarshal(itemsJSON, &c.Items)
		carts = append(carts, &c)
	}
	return carts, nil
}

// Bill operations

func (rs *PostgresReadStore) setBill(b *readmodel.BillReadModel) error {
	linesJSON, _ := json.Marshal(b.Lines)
	_, err := rs.db.Exec(`
		INSERT INTO read_bills (id, user_id, lines, original_subtotal, discounted_subtotal, total_saved,
			shipping_cost, grand_total, shipping_method_id, payment_method_id, address,
			applied_event_id, applied_event_name, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
	`, b.ID, b.UserID, linesJSON, b.OriginalSubtotal, b.DiscountedSubtotal, b.TotalSaved,
		b.ShippingCost, b.GrandTotal, b.ShippingMethodID, b.PaymentMethodID, b.Address,
		nullString(b.AppliedEventID), nullString(b.AppliedEventName), b.Status, b.CreatedAt, b.UpdatedAt)
	return err
}

func (rs *PostgresReadStore) getBill(id string) (*readmodel.BillReadModel, bool, error) {
	var b readmodel.BillReadModel
	var linesJSON []byte
	var appliedEventID, appliedEventName sql.NullString
	err := rs.db.QueryRow(`
		SELECT id, user_id, lines, original_subtotal, discounted_subtotal, total_saved,
			shipping_cost, grand_total, shipping_method_id, payment_method_id, address,
			applied_event_id, applied_event_name, status, created_at, updated_at
		FROM read_bills WHERE id = $1
	`, id).Scan(&b.ID, &b.UserID, &linesJSON, &b.OriginalSubtotal, &b.DiscountedSubtotal, &b.TotalSaved,
		&b.ShippingCost, &b.GrandTotal, &b.ShippingMethodID, &b.PaymentMethodID, &b.Address,
		&appliedEventID, &appliedEventName, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	b.AppliedEventID = appliedEventID.String
	b.AppliedEventName = appliedEventName.String
	json.Unmarshal(linesJSON, &b.Lines)
	return &b, true, nil
}

func (rs *PostgresReadStore) getAllBills() ([]any, error) {
	rows, err := rs.db.Query(`
		SELECT id, user_id, lines, original_subtotal, discounted_subtotal, total_saved,
			shipping_cost, grand_total, shipping_method_id, payment_method_id, address,
			applied_event_id, applied_event_name, status, created_at, updated_at
		FROM read_bills ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bills []any
	for rows.Next() {
		var b readmodel.BillReadModel
		var linesJSON []byte
		var appliedEventID, appliedEventName sql.NullString
		if err := rows.Scan(&b.ID, &b.UserID, &linesJSON, &b.OriginalSubtotal, &b.DiscountedSubtotal, &b.TotalSaved,
			&b.ShippingCost, &b.GrandTotal, &b.ShippingMethodID, &b.PaymentMethodID, &b.Address,
			&appliedEventID, &appliedEventName, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
			log.Printf("[PostgresReadStore] Error scanning bill: %v", err)
			continue
		}
		b.AppliedEventID = appliedEventID.String
		b.AppliedEventName = appliedEventName.String
		json.Unmarshal(linesJSON, &b.Lines)
		bills = append(bills, &b)
	}
	return bills, nil
}

// Inventory operations

func (rs *PostgresReadStore) setInventory(inv *readmodel.InventoryReadModel) error {
	_, err := rs.db.Exec(`
		INSERT INTO read_inventory (book_id, total_stock, reserved_stock, available_stock, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (book_id) DO UPDATE SET
			total_stock = EXCLUDED.total_stock,
			reserved_stock = EXCLUDED.reserved_stock,
			available_stock = EXCLUDED.available_stock,
			updated_at = EXCLUDED.updated_at
	`, inv.BookID, inv.TotalStock, inv.ReservedStock, inv.AvailableStock, time.Now())
	return err
}

func (rs *PostgresReadStore) getInventory(id string) (*readmodel.InventoryReadModel, bool, error) {
	var inv readmodel.InventoryReadModel
	err := rs.db.QueryRow(`
		SELECT book_id, total_stock, reserved_stock, available_stock
		FROM read_inventory WHERE book_id = $1
	`, id).Scan(&inv.BookID, &inv.TotalStock, &inv.ReservedStock, &inv.AvailableStock)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &inv, true, nil
}

func (rs *PostgresReadStore) getAllInventory() ([]any, error) {
	rows, err := rs.db.Query(`
		SELECT book_id, total_stock, reserved_stock, available_stock FROM read_inventory
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var inventory []any
	for rows.Next() {
		var inv readmodel.InventoryReadModel
		if err := rows.Scan(&inv.BookID, &inv.TotalStock, &inv.ReservedStock, &inv.AvailableStock); err != nil {
			log.Printf("[PostgresReadStore] Error scanning inventory: %v", err)
			continue
		}
		inventory = append(inventory, &inv)
	}
	return inventory, nil
}

// User operations

func (rs *PostgresReadStore) setUser(u *readmodel.UserReadModel) error {
	groupIDs, _ := json.Marshal(u.GroupIDs)
	_, err := rs.db.Exec(`
		INSERT INTO read_users (id, email, password_hash, name, role, vip, location, group_ids, bills_placed, is_active, registered_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			password_hash = EXCLUDED.password_hash,
			name = EXCLUDED.name,
			role = EXCLUDED.role,
			vip = EXCLUDED.vip,
			location = EXCLUDED.location,
			group_ids = EXCLUDED.group_ids,
			bills_placed = EXCLUDED.bills_placed,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at
	`, u.ID, u.Email, u.PasswordHash, u.Name, u.Role, u.VIP, nullString(u.Location),
		groupIDs, u.BillsPlaced, u.IsActive, u.RegisteredAt, u.UpdatedAt)
	return err
}

func (rs *PostgresReadStore) getUser(id string) (*readmodel.UserReadModel, bool, error) {
	return rs.scanUser(rs.db.QueryRow(`
		SELECT id, email, password_hash, name, role, vip, location, group_ids, bills_placed, is_active, registered_at, updated_at
		FROM read_users WHERE id = $1
	`, id))
}

// GetUserByEmail retrieves a user by email
func (rs *PostgresReadStore) GetUserByEmail(email string) (*readmodel.UserReadModel, bool, error) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	return rs.scanUser(rs.db.QueryRow(`
		SELECT id, email, password_hash, name, role, vip, location, group_ids, bills_placed, is_active, registered_at, updated_at
		FROM read_users WHERE email = $1
	`, email))
}

func (rs *PostgresReadStore) scanUser(row *sql.Row) (*readmodel.UserReadModel, bool, error) {
	var u readmodel.UserReadModel
	var location sql.NullString
	var groupIDs []byte
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.VIP,
		&location, &groupIDs, &u.BillsPlaced, &u.IsActive, &u.RegisteredAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	u.Location = location.String
	json.Unmarshal(groupIDs, &u.GroupIDs)
	return &u, true, nil
}

func (rs *PostgresReadStore) getAllUsers() ([]any, error) {
	rows, err := rs.db.Query(`
		SELECT id, email, password_hash, name, role, vip, location, group_ids, bills_placed, is_active, registered_at, updated_at
		FROM read_users ORDER BY registered_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []any
	for rows.Next() {
		var u readmodel.UserReadModel
		var location sql.NullString
		var groupIDs []byte
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.VIP,
			&location, &groupIDs, &u.BillsPlaced, &u.IsActive, &u.RegisteredAt, &u.UpdatedAt); err != nil {
			log.Printf("[PostgresReadStore] Error scanning user: %v", err)
			continue
		}
		u.Location = location.String
		json.Unmarshal(groupIDs, &u.GroupIDs)
		users = append(users, &u)
	}
	return users, nil
}

// Session operations

func (rs *PostgresReadStore) setSession(s *readmodel.SessionReadModel) error {
	_, err := rs.db.Exec(`
		INSERT INTO user_sessions (id, user_id, refresh_token_hash, expires_at, created_at, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			refresh_token_hash = EXCLUDED.refresh_token_hash,
			expires_at = EXCLUDED.expires_at
	`, s.ID, s.UserID, s.RefreshTokenHash, s.ExpiresAt, s.CreatedAt, s.IPAddress, s.UserAgent)
	return err
}

func (rs *PostgresReadStore) getSession(id string) (*readmodel.SessionReadModel, bool, error) {
	var s readmodel.SessionReadModel
	err := rs.db.QueryRow(`
		SELECT id, user_id, refresh_token_hash, expires_at, created_at, ip_address, user_agent
		FROM user_sessions WHERE id = $1
	`, id).Scan(&s.ID, &s.UserID, &s.RefreshTokenHash, &s.ExpiresAt, &s.CreatedAt, &s.IPAddress, &s.UserAgent)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &s, true, nil
}

// DeleteSessionsByUserID deletes all sessions for a user
func (rs *PostgresReadStore) DeleteSessionsByUserID(userID string) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	_, err := rs.db.Exec(`DELETE FROM user_sessions WHERE user_id = $1`, userID)
	return err
}

// DeleteExpiredSessions removes expired sessions
func (rs *PostgresReadStore) DeleteExpiredSessions() error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	_, err := rs.db.Exec(`DELETE FROM user_sessions WHERE expires_at < NOW()`)
	return err
}

func (rs *PostgresReadStore) getAllSessions() ([]any, error) {
	rows, err := rs.db.Query(`
		SELECT id, user_id, refresh_token_hash, expires_at, created_at, ip_address, user_agent
		FROM user_sessions ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []any
	for rows.Next() {
		var s readmodel.SessionReadModel
		if err := rows.Scan(&s.ID, &s.UserID, &s.RefreshTokenHash, &s.ExpiresAt, &s.CreatedAt, &s.IPAddress, &s.UserAgent); err != nil {
			log.Printf("[PostgresReadStore] Error scanning session: %v", err)
			continue
		}
		sessions = append(sessions, &s)
	}
	return sessions, nil
}

// Category operations

func (rs *PostgresReadStore) setCategory(c *readmodel.CategoryReadModel) error {
	_, err := rs.db.Exec(`
		INSERT INTO read_categories (id, name, slug, description, parent_id, sort_order, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			slug = EXCLUDED.slug,
			description = EXCLUDED.description,
			parent_id = EXCLUDED.parent_id,
			sort_order = EXCLUDED.sort_order,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at
	`, c.ID, c.Name, c.Slug, c.Description, nullString(c.ParentID), c.SortOrder, c.IsActive, c.CreatedAt, c.UpdatedAt)
	return err
}

func (rs *PostgresReadStore) getCategory(id string) (*readmodel.CategoryReadModel, bool, error) {
	var c readmodel.CategoryReadModel
	var parentID sql.NullString
	err := rs.db.QueryRow(`
		SELECT id, name, slug, description, parent_id, sort_order, is_active, created_at, updated_at
		FROM read_categories WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &parentID, &c.SortOrder, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	c.ParentID = parentID.String
	return &c, true, nil
}

func (rs *PostgresReadStore) getAllCategories() ([]any, error) {
	rows, err := rs.db.Query(`
		SELECT id, name, slug, description, parent_id, sort_order, is_active, created_at, updated_at
		FROM read_categories ORDER BY sort_order, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []any
	for rows.Next() {
		var c readmodel.CategoryReadModel
		var parentID sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &parentID, &c.SortOrder, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			log.Printf("[PostgresReadStore] Error scanning category: %v", err)
			continue
		}
		c.ParentID = parentID.String
		categories = append(categories, &c)
	}
	return categories, nil
}

// Promo event operations. The full event document (rules, targets, actions,
// images) is stored as JSONB; the selector needs the whole thing anyway.

func (rs *PostgresReadStore) setPromoEvent(e *readmodel.PromoEventReadModel) error {
	doc, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = rs.db.Exec(`
		INSERT INTO read_promo_events (id, status, priority, start_at, end_at, doc, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			priority = EXCLUDED.priority,
			start_at = EXCLUDED.start_at,
			end_at = EXCLUDED.end_at,
			doc = EXCLUDED.doc,
			updated_at = EXCLUDED.updated_at
	`, e.ID, e.Status, e.Priority, e.StartAt, e.EndAt, doc, time.Now())
	return err
}

func (rs *PostgresReadStore) getPromoEvent(id string) (*readmodel.PromoEventReadModel, bool, error) {
	var doc []byte
	err := rs.db.QueryRow(`SELECT doc FROM read_promo_events WHERE id = $1`, id).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var e readmodel.PromoEventReadModel
	if err := json.Unmarshal(doc, &e); err != nil {
		return nil, false, err
	}
	return &e, true, nil
}

func (rs *PostgresReadStore) getAllPromoEvents() ([]any, error) {
	rows, err := rs.db.Query(`SELECT doc FROM read_promo_events ORDER BY priority DESC, updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []any
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			log.Printf("[PostgresReadStore] Error scanning promo event: %v", err)
			continue
		}
		var e readmodel.PromoEventReadModel
		if err := json.Unmarshal(doc, &e); err != nil {
			log.Printf("[PostgresReadStore] Error unmarshaling promo event: %v", err)
			continue
		}
		events = append(events, &e)
	}
	return events, nil
}

// Promo usage operations, keyed by "<event_id>:<user_id>"

func (rs *PostgresReadStore) setPromoUsage(key string, u *readmodel.PromoUsageReadModel) error {
	_, err := rs.db.Exec(`
		INSERT INTO read_promo_usage (usage_key, event_id, user_id, uses)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (usage_key) DO UPDATE SET uses = EXCLUDED.uses
	`, key, u.EventID, u.UserID, u.Uses)
	return err
}

func (rs *PostgresReadStore) getPromoUsage(key string) (*readmodel.PromoUsageReadModel, bool, error) {
	var u readmodel.PromoUsageReadModel
	err := rs.db.QueryRow(`
		SELECT event_id, user_id, uses FROM read_promo_usage WHERE usage_key = $1
	`, key).Scan(&u.EventID, &u.UserID, &u.Uses)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &u, true, nil
}

func (rs *PostgresReadStore) getAllPromoUsage() ([]any, error) {
	rows, err := rs.db.Query(`SELECT event_id, user_id, uses FROM read_promo_usage`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var usage []any
	for rows.Next() {
		var u readmodel.PromoUsageReadModel
		if err := rows.Scan(&u.EventID, &u.UserID, &u.Uses); err != nil {
			log.Printf("[PostgresReadStore] Error scanning promo usage: %v", err)
			continue
		}
		usage = append(usage, &u)
	}
	return usage, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
