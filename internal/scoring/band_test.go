package scoring

import (
	"testing"

	"github.com/linguabridge/exam-grading-service/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestReadingBandScenarios(t *testing.T) {
	assert.Equal(t, 7.0, ReadingBands.ToBand(30, 40))
	assert.Equal(t, 9.0, ReadingBands.ToBand(39, 40))
	assert.Equal(t, 9.0, ReadingBands.ToBand(40, 40))
	assert.Equal(t, 2.0, ReadingBands.ToBand(0, 40))
	assert.Equal(t, 2.5, ReadingBands.ToBand(4, 40))
}

func TestListeningBandScenarios(t *testing.T) {
	assert.Equal(t, 9.0, ListeningBands.ToBand(39, 40))
	assert.Equal(t, 7.0, ListeningBands.ToBand(30, 40))
	assert.Equal(t, 6.5, ListeningBands.ToBand(26, 40))
	assert.Equal(t, 2.0, ListeningBands.ToBand(3, 40))
}

func TestBandMonotonicity(t *testing.T) {
	for _, table := range []BandTable{ListeningBands, ReadingBands} {
		prev := table.ToBand(0, 40)
		for raw := 1; raw <= 40; raw++ {
			band := table.ToBand(raw, 40)
			assert.GreaterOrEqual(t, band, prev, "band must not decrease at raw=%d", raw)
			prev = band
		}
	}
}

func TestBandTotalFunction(t *testing.T) {
	for raw := 0; raw <= 40; raw++ {
		band := ReadingBands.ToBand(raw, 40)
		assert.GreaterOrEqual(t, band, 2.0)
		assert.LessOrEqual(t, band, 9.0)
	}
}

func TestBandNormalizesDenominator(t *testing.T) {
	// 15/20 normalizes to 30/40
	assert.Equal(t, ReadingBands.ToBand(30, 40), ReadingBands.ToBand(15, 20))
	// full marks on a short test is still band 9
	assert.Equal(t, 9.0, ListeningBands.ToBand(20, 20))
}

func TestBandZeroTotal(t *testing.T) {
	assert.Equal(t, 2.0, ReadingBands.ToBand(0, 0))
}

func TestTableFor(t *testing.T) {
	assert.Equal(t, 6.5, TableFor(models.ModuleListening).ToBand(26, 40))
	assert.Equal(t, 6.0, TableFor(models.ModuleReading).ToBand(26, 40))
}
