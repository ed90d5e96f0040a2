package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFarmerServiceImportCSV(t *testing.T) {
	t.Run("imports rows under canonical headers", func(t *testing.T) {
		repo := newFakeFarmerRepo()
		svc := NewFarmerService(repo)

		csv := "name,phone,national_id\n" +
			"Wanjiku Kamau,+254712345678,12345678\n" +
			"Otieno Odhiambo,+254722000111,23456789\n"

		result, err := svc.ImportCSV(context.Background(), strings.NewReader(csv))
		require.NoError(t, err)

		assert.Equal(t, 2, result.Imported)
		assert.Equal(t, 0, result.Skipped)
		assert.Len(t, repo.farmers, 2)
	})

	t.Run("accepts header aliases regardless of case", func(t *testing.T) {
		repo := newFakeFarmerRepo()
		svc := NewFarmerService(repo)

		csv := "Name,Phone,nationalId\n" +
			"Wanjiku Kamau,+254712345678,12345678\n"

		result, err := svc.ImportCSV(context.Background(), strings.NewReader(csv))
		require.NoError(t, err)
		assert.Equal(t, 1, result.Imported)
	})

	t.Run("accepts ID as national ID header", func(t *testing.T) {
		repo := newFakeFarmerRepo()
		svc := NewFarmerService(repo)

		csv := "name,phone,ID\n" +
			"Wanjiku Kamau,+254712345678,12345678\n"

		result, err := svc.ImportCSV(context.Background(), strings.NewReader(csv))
		require.NoError(t, err)
		assert.Equal(t, 1, result.Imported)
	})

	t.Run("skips rows missing a required field", func(t *testing.T) {
		repo := newFakeFarmerRepo()
		svc := NewFarmerService(repo)

		csv := "name,phone,national_id\n" +
			"Wanjiku Kamau,+254712345678,12345678\n" +
			"Missing Phone,,23456789\n" +
			",+254722000111,34567890\n"

		result, err := svc.ImportCSV(context.Background(), strings.NewReader(csv))
		require.NoError(t, err)

		assert.Equal(t, 1, result.Imported)
		assert.Equal(t, 2, result.Skipped)
	})

	t.Run("skips rows with fewer fields than the header", func(t *testing.T) {
		repo := newFakeFarmerRepo()
		svc := NewFarmerService(repo)

		csv := "name,phone,national_id\n" +
			"Wanjiku Kamau,+254712345678,12345678\n" +
			"Short Row,+254722000111\n" +
			"Truncated\n"

		result, err := svc.ImportCSV(context.Background(), strings.NewReader(csv))
		require.NoError(t, err)

		assert.Equal(t, 1, result.Imported)
		assert.Equal(t, 2, result.Skipped)
	})

	t.Run("ignores extra columns", func(t *testing.T) {
		repo := newFakeFarmerRepo()
		svc := NewFarmerService(repo)

		csv := "name,county,phone,national_id\n" +
			"Wanjiku Kamau,Nakuru,+254712345678,12345678\n"

		result, err := svc.ImportCSV(context.Background(), strings.NewReader(csv))
		require.NoError(t, err)
		assert.Equal(t, 1, result.Imported)
	})

	t.Run("rejects missing required columns", func(t *testing.T) {
		svc := NewFarmerService(newFakeFarmerRepo())

		csv := "name,phone\n" +
			"Wanjiku Kamau,+254712345678\n"

		_, err := svc.ImportCSV(context.Background(), strings.NewReader(csv))
		assert.ErrorIs(t, err, ErrMissingCSVColumns)
	})

	t.Run("rejects an empty file", func(t *testing.T) {
		svc := NewFarmerService(newFakeFarmerRepo())

		_, err := svc.ImportCSV(context.Background(), strings.NewReader(""))
		assert.ErrorIs(t, err, ErrEmptyImport)
	})

	t.Run("rejects a file with headers only", func(t *testing.T) {
		svc := NewFarmerService(newFakeFarmerRepo())

		_, err := svc.ImportCSV(context.Background(), strings.NewReader("name,phone,national_id\n"))
		assert.ErrorIs(t, err, ErrEmptyImport)
	})
}

func TestFarmerServiceLink(t *testing.T) {
	t.Run("first claim wins", func(t *testing.T) {
		repo := newFakeFarmerRepo()
		svc := NewFarmerService(repo)

		created, err := svc.Create(context.Background(), &CreateFarmerInput{
			Name:       "Wanjiku Kamau",
			Phone:      "+254712345678",
			NationalID: "12345678",
		})
		require.NoError(t, err)

		farmer, err := svc.Link(context.Background(), created.ID, 7)
		require.NoError(t, err)
		require.NotNil(t, farmer.AgentID)
		assert.EqualValues(t, 7, *farmer.AgentID)

		_, err = svc.Link(context.Background(), created.ID, 8)
		assert.ErrorIs(t, err, ErrFarmerAlreadyLinked)

		// Loser's claim must not move the farmer
		kept, err := svc.GetByID(context.Background(), created.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 7, *kept.AgentID)
	})

	t.Run("linking an unknown farmer fails", func(t *testing.T) {
		svc := NewFarmerService(newFakeFarmerRepo())

		_, err := svc.Link(context.Background(), 42, 7)
		assert.ErrorIs(t, err, ErrFarmerNotFound)
	})
}

func TestFarmerServiceCreate(t *testing.T) {
	svc := NewFarmerService(newFakeFarmerRepo())

	_, err := svc.Create(context.Background(), &CreateFarmerInput{Name: "No Phone"})
	assert.ErrorIs(t, err, ErrMissingFarmerFields)
}
