package chain

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// SignatureVerifier checks EIP-191 personal-sign signatures
//
//go:generate mockgen -source=signature.go -destination=../mocks/signature.go -package=mocks -mock_names=SignatureVerifier=MockSignatureVerifier
type SignatureVerifier interface {
	VerifySignature(messageHash []byte, signature string, expectedSigner string) bool
}

// LocalVerifier recovers signers without touching the RPC endpoint
type LocalVerifier struct{}

func (LocalVerifier) VerifySignature(messageHash []byte, signature string, expectedSigner string) bool {
	return VerifySignature(messageHash, signature, expectedSigner)
}

// DiscountMessageHash is keccak256(abi.encodePacked(address student, uint256 courseID, uint256 teoCostWei, address contract))
func DiscountMessageHash(student common.Address, courseID int64, teoCostWei *big.Int, contract common.Address) common.Hash {
	return crypto.Keccak256Hash(
		student.Bytes(),
		common.LeftPadBytes(new(big.Int).SetInt64(courseID).Bytes(), 32),
		common.LeftPadBytes(teoCostWei.Bytes(), 32),
		contract.Bytes(),
	)
}

// RecoverSigner returns the address that personal-signed messageHash
func RecoverSigner(messageHash []byte, signature string) (common.Address, error) {
	sig, err := hexutil.Decode(normalizeHex(signature))
	if err != nil {
		return common.Address{}, err
	}
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, errInvalidSignatureLength
	}

	// wallets emit v as 27/28
	sig = append([]byte(nil), sig...)
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash(messageHash), sig)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// VerifySignature reports whether signature personal-signs messageHash by expectedSigner
func VerifySignature(messageHash []byte, signature string, expectedSigner string) bool {
	if !common.IsHexAddress(expectedSigner) {
		return false
	}
	signer, err := RecoverSigner(messageHash, signature)
	if err != nil {
		return false
	}
	return signer == common.HexToAddress(expectedSigner)
}

func normalizeHex(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return "0x" + s
	}
	return s
}
