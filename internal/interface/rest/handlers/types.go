package handlers

type initiateSwapRequest struct {
	SecretHash    string `json:"secret_hash" binding:"required"`
	Recipient     string `json:"recipient" binding:"required"`
	Amount        uint64 `json:"amount"`
	TimeoutSecs   uint64 `json:"timeout_seconds"`
	TargetChain   string `json:"target_chain"`
	TargetAddress string `json:"target_address"`
}

type initiateSwapResponse struct {
	LockId string `json:"lock_id"`
}

type withdrawRequest struct {
	Preimage string `json:"preimage" binding:"required"`
}

type completeSwapRequest struct {
	SourceChain   string `json:"source_chain"`
	SourceAddress string `json:"source_address"`
	Destination   string `json:"destination" binding:"required"`
	Amount        uint64 `json:"amount"`
	Preimage      string `json:"preimage"`
}

type crossChainCallRequest struct {
	ChainId         string `json:"chain_id" binding:"required"`
	ContractAddress string `json:"contract_address" binding:"required"`
	Calldata        string `json:"calldata"`
	GasLimit        uint64 `json:"gas_limit"`
}

type crossChainCallResponse struct {
	IntentId string `json:"intent_id"`
}

type lockResponse struct {
	Id            string `json:"id"`
	SecretHash    string `json:"secret_hash"`
	Sender        string `json:"sender"`
	Recipient     string `json:"recipient"`
	Amount        uint64 `json:"amount"`
	EndTime       int64  `json:"end_time"`
	Status        string `json:"status"`
	Funding       string `json:"funding"`
	Preimage      string `json:"preimage,omitempty"`
	TargetChain   string `json:"target_chain,omitempty"`
	TargetAddress string `json:"target_address,omitempty"`
	CreatedAt     int64  `json:"created_at"`
}

type isRelayerResponse struct {
	Identity  string `json:"identity"`
	IsRelayer bool   `json:"is_relayer"`
}

type infoResponse struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}
