package models

// NFT is the evolving in-app record of one minted collectible. A record is
// created only after a successful ledger mint and is never deleted.
//
// Invariants: Points and Rewards stay non-negative; Staked implies a non-zero
// StakeStart; unstaking folds the elapsed interval into Rewards exactly once.
type NFT struct {
	MintAddress   string `json:"mintAddress"`
	Points        int64  `json:"points"`
	Staked        bool   `json:"staked"`
	StakeStart    int64  `json:"stakeStart"` // unix millis, zero when not staked
	Rewards       int64  `json:"rewards"`
	Stage         int    `json:"stage"` // index into the configured stage ladder
	MintTimestamp int64  `json:"mintTimestamp"`
	ImageURI      string `json:"imageUri"`
	MetadataURI   string `json:"metadataUri,omitempty"`
}
