package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/happypororo/W-Best-Tracker/pkg/config"
	"github.com/happypororo/W-Best-Tracker/pkg/models"
	"github.com/happypororo/W-Best-Tracker/pkg/retry"
)

// extractScript pulls the visible fields from every loaded product card.
// Price text is parsed in Go where it can be tested.
const extractScript = `JSON.stringify(Array.from(document.querySelectorAll('div.product-item')).map(function(el) {
	var texts = el.querySelectorAll('.prdc-title span.text');
	var img = el.querySelector('img');
	var link = el.querySelector('a');
	var orig = el.querySelector('.prdc-price .customer-price');
	var fin = el.querySelector('.prdc-price .final-price strong');
	var disc = el.querySelector('.prdc-price .final-discount em');
	return {
		brand: texts.length > 0 ? texts[0].textContent : '',
		name: texts.length > 1 ? texts[1].textContent : '',
		originalPrice: orig ? orig.textContent : '',
		finalPrice: fin ? fin.textContent : '',
		discount: disc ? disc.textContent : '',
		imageUrl: img ? (img.getAttribute('src') || img.getAttribute('data-src') || '') : '',
		productUrl: link ? (link.getAttribute('href') || '') : ''
	};
}))`

const countScript = `document.querySelectorAll('div.product-item').length`

// rawItem is the untyped card payload returned by extractScript.
type rawItem struct {
	Brand         string `json:"brand"`
	Name          string `json:"name"`
	OriginalPrice string `json:"originalPrice"`
	FinalPrice    string `json:"finalPrice"`
	Discount      string `json:"discount"`
	ImageURL      string `json:"imageUrl"`
	ProductURL    string `json:"productUrl"`
}

// WConcept scrapes the best-product ranking pages with a headless browser.
type WConcept struct {
	cfg    *config.ScraperConfig
	logger *zap.Logger
}

// New creates a WConcept scraper.
func New(cfg *config.ScraperConfig, logger *zap.Logger) *WConcept {
	return &WConcept{cfg: cfg, logger: logger.Named("scraper")}
}

// Scrape collects the ranking for every configured category and returns one
// combined batch. Rank is 1-based and unique within a category page; the
// batch keeps per-category ranks, matching the upstream display.
func (s *WConcept) Scrape(ctx context.Context) ([]*models.ObservedProduct, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(s.cfg.UserAgent),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	var batch []*models.ObservedProduct
	for _, cat := range s.cfg.Categories {
		var products []*models.ObservedProduct
		err := retry.Do(ctx, retry.DefaultConfig(), func() error {
			var catErr error
			products, catErr = s.scrapeCategory(browserCtx, cat)
			return catErr
		})
		if err != nil {
			// One category failing should not lose the others; the batch
			// carries what was collected.
			s.logger.Error("Category scrape failed",
				zap.String("category", cat.Key),
				zap.Error(err))
			continue
		}
		s.logger.Info("Category scraped",
			zap.String("category", cat.Key),
			zap.Int("products", len(products)))
		batch = append(batch, products...)
	}

	if len(batch) == 0 {
		return nil, fmt.Errorf("no products collected from %d categories", len(s.cfg.Categories))
	}
	return batch, nil
}

func (s *WConcept) scrapeCategory(ctx context.Context, cat config.CategoryConfig) ([]*models.ObservedProduct, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	pageURL := s.categoryURL(cat)
	s.logger.Debug("Navigating", zap.String("url", pageURL))

	if err := chromedp.Run(ctx,
		chromedp.Navigate(pageURL),
		chromedp.Sleep(5*time.Second),
	); err != nil {
		return nil, fmt.Errorf("navigate %s: %w", pageURL, err)
	}

	if err := s.scrollToLoad(ctx); err != nil {
		return nil, fmt.Errorf("scroll: %w", err)
	}

	var payload string
	if err := chromedp.Run(ctx, chromedp.Evaluate(extractScript, &payload)); err != nil {
		return nil, fmt.Errorf("extract products: %w", err)
	}

	var items []rawItem
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		return nil, fmt.Errorf("decode extracted products: %w", err)
	}

	if len(items) > s.cfg.MaxProducts {
		items = items[:s.cfg.MaxProducts]
	}

	products := make([]*models.ObservedProduct, 0, len(items))
	for i, item := range items {
		products = append(products, s.toObserved(item, i+1, cat))
	}
	return products, nil
}

// scrollToLoad pages the lazy-loaded grid until the target count is reached
// or the count stops growing.
func (s *WConcept) scrollToLoad(ctx context.Context) error {
	lastCount, stalls := 0, 0
	for i := 0; i < s.cfg.MaxScrolls; i++ {
		var count int
		if err := chromedp.Run(ctx, chromedp.Evaluate(countScript, &count)); err != nil {
			return err
		}
		if count >= s.cfg.MaxProducts {
			return nil
		}
		if count == lastCount {
			stalls++
			if stalls >= 3 {
				s.logger.Debug("Product grid stopped growing", zap.Int("count", count))
				return nil
			}
		} else {
			stalls = 0
		}
		lastCount = count

		if err := chromedp.Run(ctx,
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
			chromedp.Sleep(1500*time.Millisecond),
		); err != nil {
			return err
		}
	}
	return nil
}

func (s *WConcept) toObserved(item rawItem, rank int, cat config.CategoryConfig) *models.ObservedProduct {
	brand := cleanText(item.Brand)
	name := cleanText(item.Name)
	if brand == "" {
		brand = models.BrandPlaceholder
	}
	if name == "" {
		name = models.BrandPlaceholder
	}

	productURL := item.ProductURL
	if productURL != "" && !strings.HasPrefix(productURL, "http") {
		productURL = "https://display.wconcept.co.kr" + productURL
	}

	original := parsePrice(item.OriginalPrice)
	sale := parsePrice(item.FinalPrice)
	// Non-discounted cards only show one price.
	if sale == nil {
		sale = original
	}

	return &models.ObservedProduct{
		ProductID:     productID(item.ImageURL, productURL, rank, brand, name),
		ProductName:   name,
		BrandName:     brand,
		Category:      cat.Name,
		CategoryKey:   cat.Key,
		ImageURL:      item.ImageURL,
		ProductURL:    productURL,
		Rank:          rank,
		OriginalPrice: original,
		SalePrice:     sale,
		DiscountRate:  parseDiscount(item.Discount),
	}
}

func (s *WConcept) categoryURL(cat config.CategoryConfig) string {
	q := url.Values{}
	q.Set("displayCategoryType", cat.DisplayType)
	q.Set("displaySubCategoryType", cat.SubType)
	q.Set("gnbType", "Y")
	return s.cfg.BaseURL + "?" + q.Encode()
}
