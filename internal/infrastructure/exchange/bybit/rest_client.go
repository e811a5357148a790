package bybit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"basiswatch/internal/application/port"
	"basiswatch/internal/domain/model"

	"github.com/rs/zerolog/log"
)

const (
	// Bybit v5 caps funding history at 200 records per request.
	maxRecordsPerRequest = 200
	recordsPerDay        = 3 // one settlement every 8 hours
)

// RestClient Bybit v5 公共行情 REST 客户端，实现 port.MarketGateway。
// Failures surface as nil/empty results, never as panics or errors upstream.
type RestClient struct {
	baseURL string
	client  *http.Client
}

func NewRestClient(baseURL string) *RestClient {
	if baseURL == "" {
		baseURL = "https://api.bybit.com"
	}
	return &RestClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type tickersResp struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Time    int64  `json:"time"`
	Result  struct {
		Category string `json:"category"`
		List     []struct {
			Symbol     string `json:"symbol"`
			LastPrice  string `json:"lastPrice"`
			MarkPrice  string `json:"markPrice"`
			IndexPrice string `json:"indexPrice"`
		} `json:"list"`
	} `json:"result"`
}

type instrumentsResp struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  struct {
		List []struct {
			Symbol       string `json:"symbol"`
			ContractType string `json:"contractType"`
			DeliveryTime string `json:"deliveryTime"`
			SettleCoin   string `json:"settleCoin"`
			Status       string `json:"status"`
		} `json:"list"`
	} `json:"result"`
}

type fundingResp struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  struct {
		List []struct {
			Symbol               string `json:"symbol"`
			FundingRate          string `json:"fundingRate"`
			FundingRateTimestamp string `json:"fundingRateTimestamp"`
		} `json:"list"`
	} `json:"result"`
}

// GetTicker 获取指定合约的最新行情；失败时返回 nil。
func (c *RestClient) GetTicker(ctx context.Context, symbol string, kind port.ContractKind) *model.Ticker {
	if symbol == "" {
		log.Warn().Msg("ticker requested without symbol")
		return nil
	}

	category := "linear"
	if kind == port.KindSpot {
		category = "spot"
	}

	params := url.Values{}
	params.Set("category", category)
	params.Set("symbol", symbol)

	var resp tickersResp
	if err := c.getJSON(ctx, "/v5/market/tickers", params, &resp); err != nil {
		log.Error().Err(err).Str("symbol", symbol).Str("category", category).Msg("get ticker failed")
		return nil
	}
	if resp.RetCode != 0 {
		log.Warn().Int("ret_code", resp.RetCode).Str("ret_msg", resp.RetMsg).Str("symbol", symbol).Msg("bybit api error")
		return nil
	}
	if len(resp.Result.List) == 0 {
		log.Warn().Str("symbol", symbol).Msg("ticker not found")
		return nil
	}

	item := resp.Result.List[0]
	serverTime := resp.Time
	if serverTime == 0 {
		serverTime = time.Now().UnixMilli()
	}

	return &model.Ticker{
		Symbol:     item.Symbol,
		LastPrice:  parseFloat(item.LastPrice),
		MarkPrice:  parseFloat(item.MarkPrice),
		IndexPrice: parseFloat(item.IndexPrice),
		Timestamp:  serverTime,
	}
}

// ListDatedContracts 返回基础符号下所有在市交割合约，按到期时间升序。
func (c *RestClient) ListDatedContracts(ctx context.Context, baseSymbol string) []model.DatedContract {
	params := url.Values{}
	params.Set("category", "linear")
	params.Set("limit", "1000")

	var resp instrumentsResp
	if err := c.getJSON(ctx, "/v5/market/instruments-info", params, &resp); err != nil {
		log.Error().Err(err).Str("base", baseSymbol).Msg("list instruments failed")
		return nil
	}
	if resp.RetCode != 0 {
		log.Warn().Int("ret_code", resp.RetCode).Str("ret_msg", resp.RetMsg).Msg("bybit api error listing instruments")
		return nil
	}

	prefix := baseSymbol + "-"
	out := make([]model.DatedContract, 0, 8)
	for _, inst := range resp.Result.List {
		if inst.ContractType != "LinearFutures" {
			continue
		}
		if !strings.HasPrefix(inst.Symbol, prefix) {
			continue
		}
		deliveryTime, _ := strconv.ParseInt(inst.DeliveryTime, 10, 64)
		if deliveryTime == 0 {
			continue
		}
		out = append(out, model.DatedContract{
			Symbol:       inst.Symbol,
			ContractType: inst.ContractType,
			DeliveryTime: deliveryTime,
			SettleCoin:   inst.SettleCoin,
			Status:       inst.Status,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].DeliveryTime < out[j].DeliveryTime })

	log.Debug().Str("base", baseSymbol).Int("count", len(out)).Msg("dated contracts listed")
	return out
}

// GetCurrentFundingRate 获取最近一次资金费率结算记录；失败时返回 nil。
func (c *RestClient) GetCurrentFundingRate(ctx context.Context, symbol string) *model.FundingRecord {
	if symbol == "" {
		return nil
	}

	params := url.Values{}
	params.Set("category", "linear")
	params.Set("symbol", symbol)
	params.Set("limit", "1")

	var resp fundingResp
	if err := c.getJSON(ctx, "/v5/market/funding/history", params, &resp); err != nil {
		log.Error().Err(err).Str("symbol", symbol).Msg("get current funding rate failed")
		return nil
	}
	if resp.RetCode != 0 || len(resp.Result.List) == 0 {
		log.Warn().Int("ret_code", resp.RetCode).Str("symbol", symbol).Msg("funding rate unavailable")
		return nil
	}

	item := resp.Result.List[0]
	ts, _ := strconv.ParseInt(item.FundingRateTimestamp, 10, 64)
	return &model.FundingRecord{
		Symbol:      item.Symbol,
		FundingRate: parseFloat(item.FundingRate),
		Timestamp:   ts,
	}
}

// GetFundingHistory 分页拉取资金费率历史，按时间戳去重并升序排序。
func (c *RestClient) GetFundingHistory(ctx context.Context, symbol string, days int) []model.FundingRecord {
	if symbol == "" || days <= 0 {
		return nil
	}

	endTime := time.Now().UnixMilli()
	startTime := time.Now().AddDate(0, 0, -days).UnixMilli()
	expected := days * recordsPerDay

	var all []model.FundingRecord

	if expected <= maxRecordsPerRequest {
		all = c.fetchFundingPage(ctx, symbol, startTime, endTime, expected)
	} else {
		currentEnd := endTime
		daysProcessed := 0
		for daysProcessed < days {
			daysInRequest := maxRecordsPerRequest / recordsPerDay
			if remaining := days - daysProcessed; daysInRequest > remaining {
				daysInRequest = remaining
			}
			currentStart := time.UnixMilli(currentEnd).AddDate(0, 0, -daysInRequest).UnixMilli()

			batch := c.fetchFundingPage(ctx, symbol, currentStart, currentEnd, maxRecordsPerRequest)
			if len(batch) == 0 {
				break
			}
			all = append(all, batch...)

			oldest := batch[0].Timestamp
			for _, rec := range batch {
				if rec.Timestamp < oldest {
					oldest = rec.Timestamp
				}
			}
			// -1 so the boundary record is not fetched twice
			currentEnd = oldest - 1
			daysProcessed += daysInRequest
		}
	}

	return mergeFundingRecords(all)
}

func (c *RestClient) fetchFundingPage(ctx context.Context, symbol string, startTime, endTime int64, limit int) []model.FundingRecord {
	params := url.Values{}
	params.Set("category", "linear")
	params.Set("symbol", symbol)
	params.Set("startTime", strconv.FormatInt(startTime, 10))
	params.Set("endTime", strconv.FormatInt(endTime, 10))
	params.Set("limit", strconv.Itoa(limit))

	var resp fundingResp
	if err := c.getJSON(ctx, "/v5/market/funding/history", params, &resp); err != nil {
		log.Error().Err(err).Str("symbol", symbol).Msg("funding history page failed")
		return nil
	}
	if resp.RetCode != 0 {
		log.Warn().Int("ret_code", resp.RetCode).Str("ret_msg", resp.RetMsg).Str("symbol", symbol).Msg("funding history api error")
		return nil
	}

	out := make([]model.FundingRecord, 0, len(resp.Result.List))
	for _, item := range resp.Result.List {
		ts, _ := strconv.ParseInt(item.FundingRateTimestamp, 10, 64)
		out = append(out, model.FundingRecord{
			Symbol:      item.Symbol,
			FundingRate: parseFloat(item.FundingRate),
			Timestamp:   ts,
		})
	}
	return out
}

// mergeFundingRecords 升序排序并按时间戳去重（分页窗口可能重叠）。
func mergeFundingRecords(records []model.FundingRecord) []model.FundingRecord {
	if len(records) == 0 {
		return records
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Timestamp < records[j].Timestamp })

	out := records[:0]
	var lastTs int64 = -1
	for _, rec := range records {
		if rec.Timestamp == lastTs {
			continue
		}
		lastTs = rec.Timestamp
		out = append(out, rec)
	}
	return out
}

func (c *RestClient) getJSON(ctx context.Context, path string, params url.Values, v interface{}) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("bybit http %d: %s", resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(v)
}

func parseFloat(s string) float64 {
	n, _ := strconv.ParseFloat(s, 64)
	return n
}

var _ port.MarketGateway = (*RestClient)(nil)
