package executor

// NativeToken identifies a bank denom inside a pair message.
type NativeToken struct {
	Denom string `json:"denom"`
}

// CW20Token identifies a cw20 contract inside a pair message.
type CW20Token struct {
	ContractAddr string `json:"contract_addr"`
}

// AssetInfo is the pair contract's tagged union of token kinds.
type AssetInfo struct {
	NativeToken *NativeToken `json:"native_token,omitempty"`
	Token       *CW20Token   `json:"token,omitempty"`
}

// Asset is an amount of one token kind in base units.
type Asset struct {
	Amount string    `json:"amount"`
	Info   AssetInfo `json:"info"`
}

func nativeAsset(denom, amount string) Asset {
	return Asset{Amount: amount, Info: AssetInfo{NativeToken: &NativeToken{Denom: denom}}}
}

// PoolResponse is the answer to {"pool":{}}.
type PoolResponse struct {
	Assets     []Asset `json:"assets"`
	TotalShare string  `json:"total_share"`
}

type poolQuery struct {
	Pool struct{} `json:"pool"`
}

type swapMsg struct {
	Swap swapBody `json:"swap"`
}

type swapBody struct {
	OfferAsset  Asset  `json:"offer_asset"`
	BeliefPrice string `json:"belief_price"`
	MaxSpread   string `json:"max_spread"`
}

type provideLiquidityMsg struct {
	ProvideLiquidity provideLiquidityBody `json:"provide_liquidity"`
}

type provideLiquidityBody struct {
	Assets            []Asset `json:"assets"`
	SlippageTolerance string  `json:"slippage_tolerance"`
	AutoStake         bool    `json:"auto_stake"`
}

type withdrawLiquidityMsg struct {
	WithdrawLiquidity struct{} `json:"withdraw_liquidity"`
}
