package wallet

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip39"
)

// DerivationPath is the default account path, m/44'/60'/0'/0/0
var DerivationPath = []uint32{
	hdkeychain.HardenedKeyStart + 44,
	hdkeychain.HardenedKeyStart + 60,
	hdkeychain.HardenedKeyStart + 0,
	0,
	0,
}

// NewRandom creates a wallet from a fresh 12 word mnemonic
func NewRandom() (Wallet, error) {
	entropy, err := bip39.NewEntropy(128)
	if err != nil {
		return Wallet{}, fmt.Errorf("failed to generate entropy: %w", err)
	}

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return Wallet{}, fmt.Errorf("failed to generate mnemonic: %w", err)
	}

	return FromMnemonic(mnemonic)
}

// FromMnemonic derives the first account of a BIP-39 mnemonic
func FromMnemonic(mnemonic string) (Wallet, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return Wallet{}, fmt.Errorf("invalid mnemonic")
	}

	seed := bip39.NewSeed(mnemonic, "")

	// the network params only affect serialisation of extended keys
	key, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return Wallet{}, fmt.Errorf("failed to create master key: %w", err)
	}

	for _, index := range DerivationPath {
		key, err = key.Derive(index)
		if err != nil {
			return Wallet{}, fmt.Errorf("failed to derive key: %w", err)
		}
	}

	privKey, err := key.ECPrivKey()
	if err != nil {
		return Wallet{}, fmt.Errorf("failed to get private key: %w", err)
	}

	ecdsaKey, err := crypto.ToECDSA(privKey.Serialize())
	if err != nil {
		return Wallet{}, fmt.Errorf("failed to convert private key: %w", err)
	}

	w := fromKey(ecdsaKey)
	w.Mnemonic = mnemonic
	return w, nil
}

// FromPrivateKey builds an empty wallet around an existing key
func FromPrivateKey(hexKey string) (Wallet, error) {
	key, err := ParsePrivateKey(hexKey)
	if err != nil {
		return Wallet{}, err
	}
	return fromKey(key), nil
}

func fromKey(key *ecdsa.PrivateKey) Wallet {
	return Wallet{
		Address:      crypto.PubkeyToAddress(key.PublicKey).Hex(),
		PrivateKey:   hexutil.Encode(crypto.FromECDSA(key)),
		Transactions: []Transaction{},
	}
}
