package roas

import (
	"context"
	"fmt"
	"sync"

	"github.com/hpgroup/marketplace-analytics/internal/ads"
	"github.com/hpgroup/marketplace-analytics/internal/config"
	"github.com/hpgroup/marketplace-analytics/internal/credstore"
	"github.com/hpgroup/marketplace-analytics/internal/pkg/logger"
	"github.com/hpgroup/marketplace-analytics/internal/shop"
)

// Service assembles ROAS snapshots from the Shop and Business APIs.
type Service struct {
	cfg        *config.Config
	adsClient  *ads.Client
	shopClient *shop.Client
	resolver   *credstore.Resolver
}

// NewService creates a ROAS composition service.
func NewService(cfg *config.Config, adsClient *ads.Client, shopClient *shop.Client, resolver *credstore.Resolver) *Service {
	return &Service{cfg: cfg, adsClient: adsClient, shopClient: shopClient, resolver: resolver}
}

// Snapshot builds the composed ROAS view for one shop and window. The
// four inputs are fetched concurrently and joined when all complete; a
// failing component degrades to zero and is recorded in Errors rather
// than failing the snapshot, so a partial dashboard still renders.
func (s *Service) Snapshot(ctx context.Context, shopNumber int, startDate, endDate string, mode shop.GMVMode) (*Result, error) {
	acct, ok := s.cfg.FindShop(shopNumber)
	if !ok {
		return nil, fmt.Errorf("unknown shop number %d", shopNumber)
	}

	var (
		wg          sync.WaitGroup
		gmv         float64
		liveCost    float64
		productCost float64
		manualSpend float64

		gmvErr, liveErr, productErr, manualErr error
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		gmv, gmvErr = s.shopGMV(ctx, shopNumber, startDate, endDate, mode)
	}()
	go func() {
		defer wg.Done()
		liveCost, liveErr = s.gmvMaxCost(ctx, acct, ads.PromotionLive, startDate, endDate)
	}()
	go func() {
		defer wg.Done()
		productCost, productErr = s.gmvMaxCost(ctx, acct, ads.PromotionProduct, startDate, endDate)
	}()
	go func() {
		defer wg.Done()
		manualSpend, manualErr = s.manualSpend(ctx, startDate, endDate)
	}()
	wg.Wait()

	result := Compose(gmv, liveCost, productCost, manualSpend)
	result.ShopName = acct.Name
	result.Currency = "MYR"
	result.DateRange = DateRange{Start: startDate, End: endDate}

	for _, c := range []struct {
		name string
		err  error
	}{
		{"gmv", gmvErr},
		{"live_gmv_max_cost", liveErr},
		{"product_gmv_max_cost", productErr},
		{"manual_campaign_spend", manualErr},
	} {
		if c.err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", c.name, c.err))
			logger.Warn("roas component degraded to zero",
				"component", c.name,
				"shop_number", shopNumber,
				"error", c.err.Error())
		}
	}
	return &result, nil
}

// shopGMV aggregates order GMV under the requested mode. A pagination
// failure still yields the orders fetched so far; the error is
// surfaced alongside the partial figure.
func (s *Service) shopGMV(ctx context.Context, shopNumber int, startDate, endDate string, mode shop.GMVMode) (float64, error) {
	cred, err := s.resolver.Resolve(ctx, shopNumber)
	if err != nil {
		return 0, err
	}
	window, err := shop.WindowForDates(startDate, endDate)
	if err != nil {
		return 0, err
	}
	orders, err := s.shopClient.SearchOrders(ctx, cred, window)
	return shop.AggregateGMV(orders, mode).GMV, err
}

// gmvMaxCost sums reconciled GMV-Max cost for one promotion type.
func (s *Service) gmvMaxCost(ctx context.Context, acct config.ShopAccount, pt ads.PromotionType, startDate, endDate string) (float64, error) {
	if !acct.HasGMVMax {
		return 0, nil
	}
	token := acct.AdsAccessToken()
	if token == "" {
		return 0, fmt.Errorf("missing ads access token for %s", acct.Name)
	}

	campaigns, err := s.adsClient.GetCampaigns(ctx, token, acct.AdvertiserID, pt)
	if err != nil {
		return 0, err
	}
	rows, err := s.adsClient.GetGMVMaxReport(ctx, token, ads.GMVMaxReportQuery{
		AdvertiserID: acct.AdvertiserID,
		StoreID:      acct.ShopID,
		Dimensions:   []string{"stat_time_day", "campaign_id"},
		Metrics:      []string{"cost"},
		StartDate:    startDate,
		EndDate:      endDate,
	})
	if err != nil {
		return 0, err
	}

	var total float64
	for _, row := range ads.Reconcile(rows, campaigns) {
		total += row.MetricFloat("cost")
	}
	return total, nil
}

// manualSpend sums manual campaign spend across every configured
// advertiser account. A single account failing is logged and skipped;
// the remaining accounts still contribute.
func (s *Service) manualSpend(ctx context.Context, startDate, endDate string) (float64, error) {
	var (
		total    float64
		firstErr error
	)
	for _, acct := range s.cfg.Shops {
		token := acct.AdsAccessToken()
		if token == "" || acct.AdvertiserID == "" {
			continue
		}

		ids, err := s.adsClient.GMVMaxCampaignIDs(ctx, token, acct.AdvertiserID)
		if err != nil {
			logger.Warn("manual spend: campaign id fetch failed",
				"account", acct.Name, "error", err.Error())
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		rows, err := s.adsClient.GetIntegratedReport(ctx, token, acct.AdvertiserID, startDate, endDate, []string{"spend"})
		if err != nil {
			logger.Warn("manual spend: integrated report failed",
				"account", acct.Name, "error", err.Error())
			if firstErr == nil {
				firstErr = err
			}
		}
		total += ads.ManualSpend(rows, ids).TotalSpend
	}
	return total, firstErr
}
