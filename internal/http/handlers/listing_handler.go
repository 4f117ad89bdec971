package handlers

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	applog "github.com/PiyushGhegade/SwapShopCampusMarket/internal/log"
	"github.com/PiyushGhegade/SwapShopCampusMarket/internal/services"
	"github.com/PiyushGhegade/SwapShopCampusMarket/internal/validate"
)

type ListingHandler struct {
	Listings  *services.ListingService
	UploadDir string
}

var allowedImageExt = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true,
}

// saveImages stores multipart files under the upload dir with uuid names
// and returns their public /uploads/ paths.
func (h *ListingHandler) saveImages(c *fiber.Ctx) ([]string, error) {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil, nil
	}
	var out []string
	for _, fh := range form.File["images"] {
		ext := strings.ToLower(filepath.Ext(fh.Filename))
		if !allowedImageExt[ext] {
			applog.Security(c, "upload.reject.ext", map[string]any{"name": fh.Filename})
			continue
		}
		name := uuid.NewString() + ext
		if err := c.SaveFile(fh, filepath.Join(h.UploadDir, name)); err != nil {
			return nil, err
		}
		out = append(out, "/uploads/"+name)
	}
	return out, nil
}

// List serves the browse surface: all visible listings, optionally
// narrowed by search query, category or seller.
func (h *ListingHandler) List(c *fiber.Ctx) error {
	a := actor(c)
	if rawQ := c.Query("search"); strings.TrimSpace(rawQ) != "" {
		q, ok := validate.Q(rawQ)
		if !ok {
			applog.Security(c, "validation.fail", map[string]any{"field": "search"})
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "enter a valid keyword (letters/numbers only)"})
		}
		ls, err := h.Listings.Search(a, q)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(ls)
	}
	if v := c.Query("category"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid category id"})
		}
		ls, err := h.Listings.ByCategory(a, id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(ls)
	}
	if v := c.Query("user"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid user id"})
		}
		ls, err := h.Listings.ByUser(a, id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(ls)
	}
	ls, err := h.Listings.All(a)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(ls)
}

func (h *ListingHandler) Detail(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid listing id"})
	}
	l, err := h.Listings.Get(actor(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(l)
}

// Create accepts either a JSON draft or a multipart form with image
// files. Status always starts pending regardless of input.
func (h *ListingHandler) Create(c *fiber.Ctx) error {
	var draft services.ListingDraft
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		draft.Title = c.FormValue("title")
		draft.Description = c.FormValue("description")
		draft.UsageTime = c.FormValue("usageDuration")
		draft.Price, _ = strconv.ParseFloat(c.FormValue("price"), 64)
		draft.CategoryID, _ = strconv.ParseInt(c.FormValue("categoryId"), 10, 64)
		images, err := h.saveImages(c)
		if err != nil {
			return fail(c, err)
		}
		draft.Images = images
	} else if err := c.BodyParser(&draft); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}

	l, err := h.Listings.Create(actor(c), draft)
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "listing.create", map[string]any{"listing_id": l.ID})
	return c.Status(fiber.StatusCreated).JSON(l)
}

func (h *ListingHandler) Update(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid listing id"})
	}
	var patch services.ListingPatch
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	l, err := h.Listings.Update(actor(c), id, patch)
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "listing.update", map[string]any{"listing_id": id})
	return c.JSON(l)
}

func (h *ListingHandler) Delete(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid listing id"})
	}
	if err := h.Listings.Delete(actor(c), id); err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "listing.delete", map[string]any{"listing_id": id})
	return c.JSON(fiber.Map{"message": "Listing removed"})
}
