package custom

// Kind of a custom operation, identified by its marker byte
type Kind byte

const (
	KindCreateMasternode      Kind = 'C'
	KindResignMasternode      Kind = 'R'
	KindSetForcedRewardAddr   Kind = 'F'
	KindRemoveForcedReward    Kind = 'f'
	KindUpdateMasternode      Kind = 'm'
	KindCreateToken           Kind = 'T'
	KindMintToken             Kind = 'M'
	KindUpdateToken           Kind = 'N'
	KindUpdateTokenAny        Kind = 'n'
	KindCreatePoolPair        Kind = 'p'
	KindUpdatePoolPair        Kind = 'u'
	KindPoolSwap              Kind = 's'
	KindPoolSwapV2            Kind = 'i'
	KindAddPoolLiquidity      Kind = 'l'
	KindRemovePoolLiquidity   Kind = 'r'
	KindUtxosToAccount        Kind = 'U'
	KindAccountToUtxos        Kind = 'b'
	KindAccountToAccount      Kind = 'B'
	KindAnyAccountsToAccounts Kind = 'a'
	KindSetGovVariable        Kind = 'G'
	KindSetGovVariableHeight  Kind = 'j'
	KindAppointOracle         Kind = 'o'
	KindRemoveOracleAppoint   Kind = 'h'
	KindUpdateOracleAppoint   Kind = 't'
	KindSetOracleData         Kind = 'y'
	KindAutoAuthPrep          Kind = 'A'
)

var kindNames = map[Kind]string{
	KindCreateMasternode:      "CreateMasternode",
	KindResignMasternode:      "ResignMasternode",
	KindSetForcedRewardAddr:   "SetForcedRewardAddress",
	KindRemoveForcedReward:    "RemoveForcedRewardAddress",
	KindUpdateMasternode:      "UpdateMasternode",
	KindCreateToken:           "CreateToken",
	KindMintToken:             "MintToken",
	KindUpdateToken:           "UpdateToken",
	KindUpdateTokenAny:        "UpdateTokenAny",
	KindCreatePoolPair:        "CreatePoolPair",
	KindUpdatePoolPair:        "UpdatePoolPair",
	KindPoolSwap:              "PoolSwap",
	KindPoolSwapV2:            "PoolSwapV2",
	KindAddPoolLiquidity:      "AddPoolLiquidity",
	KindRemovePoolLiquidity:   "RemovePoolLiquidity",
	KindUtxosToAccount:        "UtxosToAccount",
	KindAccountToUtxos:        "AccountToUtxos",
	KindAccountToAccount:      "AccountToAccount",
	KindAnyAccountsToAccounts: "AnyAccountsToAccounts",
	KindSetGovVariable:        "SetGovVariable",
	KindSetGovVariableHeight:  "SetGovVariableHeight",
	KindAppointOracle:         "AppointOracle",
	KindRemoveOracleAppoint:   "RemoveOracleAppoint",
	KindUpdateOracleAppoint:   "UpdateOracleAppoint",
	KindSetOracleData:         "SetOracleData",
	KindAutoAuthPrep:          "AutoAuthPrep",
}

// Kind of the marker byte, false if the byte is not a known operation
func ParseKind(marker byte) (Kind, bool) {
	k := Kind(marker)
	_, ok := kindNames[k]
	return k, ok
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Code stored with the transaction
func (k Kind) Code() string {
	return string(rune(k))
}
