package scraper

import (
	"fmt"
	"hash/fnv"
	"regexp"
)

// Image URLs embed the product number, e.g. .../307602440_MA70111.jpg.
var imageIDPattern = regexp.MustCompile(`/(\d+)_[A-Z0-9]+\.jpg`)

// URL shapes that carry a product identifier, most specific first.
var urlIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/product/(\d+)`),
	regexp.MustCompile(`/goods/(\d+)`),
	regexp.MustCompile(`productId=(\d+)`),
	regexp.MustCompile(`goodsId=(\d+)`),
	regexp.MustCompile(`/(\d+)$`),
}

// productID derives the stable identity key for an observed product. The
// image URL is the most reliable source, then the product URL. When neither
// yields an id the fallback is used.
func productID(imageURL, productURL string, rank int, brand, name string) string {
	if m := imageIDPattern.FindStringSubmatch(imageURL); m != nil {
		return "PROD_" + m[1]
	}
	for _, p := range urlIDPatterns {
		if m := p.FindStringSubmatch(productURL); m != nil {
			return "PROD_" + m[1]
		}
	}
	return fallbackID(rank, brand, name)
}

// fallbackID is the degraded-identity mode: a deterministic hash of
// (rank, brand, name) for this batch. It cannot guarantee cross-batch
// identity stability - if the product's name or rank shifts, its history
// fragments. Kept intentionally; the upstream page sometimes exposes no
// stable key at all.
func fallbackID(rank int, brand, name string) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d_%s_%s", rank, brand, name)
	return fmt.Sprintf("PROD_%07d", h.Sum64()%10000000)
}
