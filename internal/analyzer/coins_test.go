package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KaayaanAi/mcp-crypto-news/internal/models"
)

func TestCoinDetector_SingleMention(t *testing.T) {
	detector := NewCoinDetector()

	coins := detector.Detect("Bitcoin breaks resistance")

	assert.Equal(t, []string{"BTC"}, coins)
}

func TestCoinDetector_AliasAndSymbolDeduplicate(t *testing.T) {
	detector := NewCoinDetector()

	// BTC and bitcoin map to the same canonical symbol, exactly once
	coins := detector.Detect("BTC rallies as bitcoin adoption grows")

	assert.Equal(t, []string{"BTC"}, models.NormalizeCoins(coins))
}

func TestCoinDetector_MultipleCoins(t *testing.T) {
	detector := NewCoinDetector()

	coins := detector.Detect("Ethereum and Solana follow XRP higher")

	assert.ElementsMatch(t, []string{"ETH", "SOL", "XRP"}, coins)
}

func TestCoinDetector_CaseInsensitive(t *testing.T) {
	detector := NewCoinDetector()

	coins := detector.Detect("CARDANO and PoLkAdOt update")

	assert.ElementsMatch(t, []string{"ADA", "DOT"}, coins)
}

func TestCoinDetector_WholeWordOnly(t *testing.T) {
	detector := NewCoinDetector()

	// "solid" must not match "sol"
	coins := detector.Detect("a solid quarter for miners")

	assert.Empty(t, coins)
}

func TestCoinDetector_NoMentions(t *testing.T) {
	detector := NewCoinDetector()

	coins := detector.Detect("central bank keeps rates unchanged")

	assert.NotNil(t, coins)
	assert.Empty(t, coins)
}

func TestCoinDetector_ExchangeAliasMapsToToken(t *testing.T) {
	detector := NewCoinDetector()

	coins := detector.Detect("Binance lists a new pair")

	assert.Equal(t, []string{"BNB"}, coins)
}
