package api

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"hackhub/internal/storage"
)

/* ------------------- Vendors ------------------- */

func AdminCreateVendor(vendors storage.VendorStore, audit storage.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := uid(c)
		var v storage.Vendor
		if err := c.BindJSON(&v); err != nil || v.Name == "" {
			c.JSON(400, gin.H{"error": "bad request"})
			return
		}
		if err := vendors.Create(c.Request.Context(), &v); err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		audit.Record(c.Request.Context(), &actor, "create_vendor", v.Name)
		c.JSON(200, v)
	}
}

func ListVendors(vendors storage.VendorStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := vendors.GetAll(c.Request.Context())
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		c.JSON(200, out)
	}
}

func AdminUpdateVendor(vendors storage.VendorStore, audit storage.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := uid(c)
		id, _ := strconv.Atoi(c.Param("id"))
		var v storage.Vendor
		if err := c.BindJSON(&v); err != nil || v.Name == "" {
			c.JSON(400, gin.H{"error": "bad request"})
			return
		}
		v.ID = id
		err := vendors.Update(c.Request.Context(), &v)
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(404, gin.H{"error": "not found"})
			return
		}
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		audit.Record(c.Request.Context(), &actor, "update_vendor", "vendor_id="+strconv.Itoa(id))
		c.JSON(200, v)
	}
}

func AdminDeleteVendor(vendors storage.VendorStore, audit storage.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := uid(c)
		id, _ := strconv.Atoi(c.Param("id"))
		err := vendors.Delete(c.Request.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(404, gin.H{"error": "not found"})
			return
		}
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		audit.Record(c.Request.Context(), &actor, "delete_vendor", "vendor_id="+strconv.Itoa(id))
		c.JSON(200, gin.H{"ok": true})
	}
}

/* ------------------- Benefits ------------------- */

// GET /api/admin/benefits?vendor_id=N&unassigned=1
func AdminListBenefits(benefits storage.BenefitStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		vendorID, _ := strconv.Atoi(c.Query("vendor_id"))
		unassigned := c.Query("unassigned") == "1"
		out, err := benefits.List(c.Request.Context(), vendorID, unassigned)
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		c.JSON(200, out)
	}
}

func AdminCreateBenefit(benefits storage.BenefitStore, audit storage.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := uid(c)
		var req struct {
			VendorID   int        `json:"vendor_id"`
			CouponCode string     `json:"coupon_code"`
			ExpiryDate *time.Time `json:"expiry_date"`
			UserType   string     `json:"user_type"`
		}
		if err := c.BindJSON(&req); err != nil || req.VendorID == 0 || req.CouponCode == "" {
			c.JSON(400, gin.H{"error": "bad request"})
			return
		}
		if req.UserType == "" {
			req.UserType = storage.RoleParticipant
		}

		b := &storage.Benefit{
			VendorID:   req.VendorID,
			CouponCode: req.CouponCode,
			IsActive:   true,
			ExpiryDate: req.ExpiryDate,
			UserType:   req.UserType,
		}
		if err := benefits.Create(c.Request.Context(), b); err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		audit.Record(c.Request.Context(), &actor, "create_benefit", "vendor_id="+strconv.Itoa(req.VendorID))
		c.JSON(200, b)
	}
}

func AdminUpdateBenefit(benefits storage.BenefitStore, audit storage.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := uid(c)
		id, _ := strconv.Atoi(c.Param("id"))
		var req struct {
			CouponCode string     `json:"coupon_code"`
			IsActive   bool       `json:"is_active"`
			ExpiryDate *time.Time `json:"expiry_date"`
			UserType   string     `json:"user_type"`
		}
		if err := c.BindJSON(&req); err != nil || req.CouponCode == "" {
			c.JSON(400, gin.H{"error": "bad request"})
			return
		}
		b := &storage.Benefit{
			ID:         id,
			CouponCode: req.CouponCode,
			IsActive:   req.IsActive,
			ExpiryDate: req.ExpiryDate,
			UserType:   req.UserType,
		}
		err := benefits.Update(c.Request.Context(), b)
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(404, gin.H{"error": "not found"})
			return
		}
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		audit.Record(c.Request.Context(), &actor, "update_benefit", "benefit_id="+strconv.Itoa(id))
		c.JSON(200, gin.H{"ok": true})
	}
}

func AdminDeleteBenefit(benefits storage.BenefitStore, audit storage.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := uid(c)
		id, _ := strconv.Atoi(c.Param("id"))
		err := benefits.Delete(c.Request.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(404, gin.H{"error": "not found"})
			return
		}
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		audit.Record(c.Request.Context(), &actor, "delete_benefit", "benefit_id="+strconv.Itoa(id))
		c.JSON(200, gin.H{"ok": true})
	}
}

/* ------------------- CSV import ------------------- */

// parseBenefitsCSV reads the bulk-upload format (provider_name,
// provider_website, coupon_code, redemption_instructions, expiry_date,
// user_type, vendor_id): one coupon per row, vendor_id
// referencing an existing vendor. provider_name/provider_website/
// redemption_instructions columns are accepted for compatibility with exports
// but the vendor row stays authoritative.
func parseBenefitsCSV(r io.Reader) ([]*storage.Benefit, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("empty file")
	}
	col := map[string]int{}
	for i, h := range header {
		col[strings.TrimSpace(strings.ToLower(h))] = i
	}
	for _, required := range []string{"coupon_code", "vendor_id"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	field := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var out []*storage.Benefit
	line := 1
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %v", line, err)
		}

		code := field(rec, "coupon_code")
		if code == "" {
			return nil, fmt.Errorf("line %d: empty coupon_code", line)
		}
		vendorID, err := strconv.Atoi(field(rec, "vendor_id"))
		if err != nil || vendorID <= 0 {
			return nil, fmt.Errorf("line %d: bad vendor_id", line)
		}

		b := &storage.Benefit{
			VendorID:   vendorID,
			CouponCode: code,
			IsActive:   true,
			UserType:   field(rec, "user_type"),
		}
		if b.UserType == "" {
			b.UserType = storage.RoleParticipant
		}
		if raw := field(rec, "expiry_date"); raw != "" {
			t, err := time.Parse("2006-01-02", raw)
			if err != nil {
				t, err = time.Parse(time.RFC3339, raw)
			}
			if err != nil {
				return nil, fmt.Errorf("line %d: bad expiry_date %q", line, raw)
			}
			b.ExpiryDate = &t
		}
		out = append(out, b)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no rows")
	}
	return out, nil
}

// POST /api/admin/benefits/import (multipart file field "file")
func AdminImportBenefits(benefits storage.BenefitStore, audit storage.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := uid(c)

		fh, err := c.FormFile("file")
		if err != nil {
			c.JSON(400, gin.H{"error": "file is required"})
			return
		}
		f, err := fh.Open()
		if err != nil {
			c.JSON(400, gin.H{"error": "cannot read file"})
			return
		}
		defer f.Close()

		rows, err := parseBenefitsCSV(f)
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		n, err := benefits.BulkCreate(c.Request.Context(), rows)
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		audit.Record(c.Request.Context(), &actor, "import_benefits", "rows="+strconv.Itoa(n))
		c.JSON(200, gin.H{"ok": true, "imported": n})
	}
}

/* ------------------- Assignment ------------------- */

// AdminAssignBenefits is manual mode: the chosen users each get one of the
// vendor's unassigned benefits, oldest benefit first. With fewer benefits than
// users nothing is written.
func AdminAssignBenefits(benefits storage.BenefitStore, audit storage.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := uid(c)
		var req struct {
			VendorID int   `json:"vendor_id"`
			UserIDs  []int `json:"user_ids"`
		}
		if err := c.BindJSON(&req); err != nil || req.VendorID == 0 || len(req.UserIDs) == 0 {
			c.JSON(400, gin.H{"error": "bad request"})
			return
		}

		n, err := benefits.Assign(c.Request.Context(), req.VendorID, req.UserIDs)
		if errors.Is(err, storage.ErrNotEnoughBenefits) {
			c.JSON(409, gin.H{"error": "not enough unassigned benefits for this vendor"})
			return
		}
		if errors.Is(err, storage.ErrAlreadyExists) {
			c.JSON(409, gin.H{"error": "a selected user already has a benefit from this vendor"})
			return
		}
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}

		audit.Record(c.Request.Context(), &actor, "assign_benefits",
			"vendor_id="+strconv.Itoa(req.VendorID)+" count="+strconv.Itoa(n))
		c.JSON(200, gin.H{"ok": true, "assigned": n})
	}
}

// AdminAutoAssignBenefits assigns to every user of the given role who has no
// benefit from the vendor yet. Zero eligible users is a successful no-op.
func AdminAutoAssignBenefits(benefits storage.BenefitStore, audit storage.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := uid(c)
		var req struct {
			VendorID int    `json:"vendor_id"`
			Role     string `json:"role"`
		}
		if err := c.BindJSON(&req); err != nil || req.VendorID == 0 || !validRoles[req.Role] {
			c.JSON(400, gin.H{"error": "bad request"})
			return
		}

		n, err := benefits.AutoAssign(c.Request.Context(), req.VendorID, req.Role)
		if errors.Is(err, storage.ErrNotEnoughBenefits) {
			c.JSON(409, gin.H{"error": "not enough unassigned benefits for this vendor"})
			return
		}
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}

		audit.Record(c.Request.Context(), &actor, "auto_assign_benefits",
			"vendor_id="+strconv.Itoa(req.VendorID)+" role="+req.Role+" count="+strconv.Itoa(n))
		c.JSON(200, gin.H{"ok": true, "assigned": n})
	}
}

/* ------------------- User side ------------------- */

func MyBenefits(benefits storage.BenefitStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := benefits.AssignmentsForUser(c.Request.Context(), uid(c))
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		c.JSON(200, out)
	}
}

func RedeemBenefit(benefits storage.BenefitStore, audit storage.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := uid(c)
		id, _ := strconv.Atoi(c.Param("id"))

		err := benefits.Redeem(c.Request.Context(), id, userID)
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(404, gin.H{"error": "assignment not found"})
			return
		}
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		audit.Record(c.Request.Context(), &userID, "redeem_benefit", "assignment_id="+strconv.Itoa(id))
		c.JSON(200, gin.H{"ok": true})
	}
}
