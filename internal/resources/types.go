package resources

import "time"

// Problem is the error payload Horizon returns for client errors,
// following the problem+json convention.
type Problem struct {
	Type   string         `json:"type"`
	Title  string         `json:"title"`
	Status int            `json:"status"`
	Detail string         `json:"detail,omitempty"`
	Extras map[string]any `json:"extras,omitempty"`
}

// Root describes the Horizon instance and the network it ingests.
type Root struct {
	HorizonVersion               string `json:"horizon_version"`
	CoreVersion                  string `json:"core_version"`
	IngestLatestLedger           int32  `json:"ingest_latest_ledger"`
	HistoryLatestLedger          int32  `json:"history_latest_ledger"`
	HistoryElderLedger           int32  `json:"history_elder_ledger"`
	CoreLatestLedger             int32  `json:"core_latest_ledger"`
	NetworkPassphrase            string `json:"network_passphrase"`
	CurrentProtocolVersion       int32  `json:"current_protocol_version"`
	CoreSupportedProtocolVersion int32  `json:"core_supported_protocol_version"`
}

// Balance is a single asset balance held by an account.
type Balance struct {
	Balance            string `json:"balance"`
	BuyingLiabilities  string `json:"buying_liabilities,omitempty"`
	SellingLiabilities string `json:"selling_liabilities,omitempty"`
	AssetType          string `json:"asset_type"`
	AssetCode          string `json:"asset_code,omitempty"`
	AssetIssuer        string `json:"asset_issuer,omitempty"`
}

// Account represents a Stellar account.
type Account struct {
	ID                 string    `json:"id"`
	AccountID          string    `json:"account_id"`
	Sequence           string    `json:"sequence"`
	SubentryCount      int32     `json:"subentry_count"`
	LastModifiedLedger uint32    `json:"last_modified_ledger"`
	LastModifiedTime   time.Time `json:"last_modified_time"`
	Balances           []Balance `json:"balances"`
	PagingToken        string    `json:"paging_token"`
}

// Ledger represents a closed ledger.
type Ledger struct {
	ID                         string    `json:"id"`
	PagingToken                string    `json:"paging_token"`
	Hash                       string    `json:"hash"`
	PrevHash                   string    `json:"prev_hash,omitempty"`
	Sequence                   int32     `json:"sequence"`
	SuccessfulTransactionCount int32     `json:"successful_transaction_count"`
	FailedTransactionCount     int32     `json:"failed_transaction_count"`
	OperationCount             int32     `json:"operation_count"`
	ClosedAt                   time.Time `json:"closed_at"`
	TotalCoins                 string    `json:"total_coins"`
	FeePool                    string    `json:"fee_pool"`
	BaseFeeInStroops           int32     `json:"base_fee_in_stroops"`
	BaseReserveInStroops       int64     `json:"base_reserve_in_stroops"`
	MaxTxSetSize               int32     `json:"max_tx_set_size"`
	ProtocolVersion            int32     `json:"protocol_version"`
}

// Price is a rational price quote (numerator over denominator).
type Price struct {
	N int32 `json:"n"`
	D int32 `json:"d"`
}

// Trade represents an executed trade between two assets.
type Trade struct {
	ID                 string    `json:"id"`
	PagingToken        string    `json:"paging_token"`
	LedgerCloseTime    time.Time `json:"ledger_close_time"`
	TradeType          string    `json:"trade_type"`
	BaseAccount        string    `json:"base_account,omitempty"`
	BaseAmount         string    `json:"base_amount"`
	BaseAssetType      string    `json:"base_asset_type"`
	BaseAssetCode      string    `json:"base_asset_code,omitempty"`
	BaseAssetIssuer    string    `json:"base_asset_issuer,omitempty"`
	CounterAccount     string    `json:"counter_account,omitempty"`
	CounterAmount      string    `json:"counter_amount"`
	CounterAssetType   string    `json:"counter_asset_type"`
	CounterAssetCode   string    `json:"counter_asset_code,omitempty"`
	CounterAssetIssuer string    `json:"counter_asset_issuer,omitempty"`
	Price              Price     `json:"price"`
	BaseIsSeller       bool      `json:"base_is_seller"`
}

// Transaction represents a submitted transaction.
type Transaction struct {
	ID                    string    `json:"id"`
	PagingToken           string    `json:"paging_token"`
	Successful            bool      `json:"successful"`
	Hash                  string    `json:"hash"`
	Ledger                int32     `json:"ledger"`
	CreatedAt             time.Time `json:"created_at"`
	SourceAccount         string    `json:"source_account"`
	SourceAccountSequence string    `json:"source_account_sequence"`
	FeeCharged            string    `json:"fee_charged"`
	MaxFee                string    `json:"max_fee"`
	OperationCount        int32     `json:"operation_count"`
	EnvelopeXdr           string    `json:"envelope_xdr,omitempty"`
	ResultXdr             string    `json:"result_xdr,omitempty"`
	MemoType              string    `json:"memo_type"`
	Memo                  string    `json:"memo,omitempty"`
}

// FeeDistribution summarizes fee percentiles over recent ledgers.
type FeeDistribution struct {
	Max  string `json:"max"`
	Min  string `json:"min"`
	Mode string `json:"mode"`
	P10  string `json:"p10"`
	P50  string `json:"p50"`
	P90  string `json:"p90"`
	P95  string `json:"p95"`
	P99  string `json:"p99"`
}

// FeeStats reports network fee statistics.
type FeeStats struct {
	LastLedger          string          `json:"last_ledger"`
	LastLedgerBaseFee   string          `json:"last_ledger_base_fee"`
	LedgerCapacityUsage string          `json:"ledger_capacity_usage"`
	FeeCharged          FeeDistribution `json:"fee_charged"`
	MaxFee              FeeDistribution `json:"max_fee"`
}
