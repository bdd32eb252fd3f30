package texture

// bitRun copies n bits starting at block bit src into an endpoint component
// starting at bit dst.
type bitRun struct {
	src, n, dst uint8
}

type runs []bitRun

func run(src, n, dst uint8) bitRun { return bitRun{src, n, dst} }

// low is a run landing at bit 0 of the component.
func low(src, n uint8) bitRun { return bitRun{src, n, 0} }

// bc6hMode describes one BC6H bit layout. Endpoints are w, x (subset 0)
// and y, z (subset 1), each with r, g, b components.
type bc6hMode struct {
	code        uint8
	modeBits    uint8
	wBits       uint
	deltaBits   [3]uint
	transformed bool
	twoSubsets  bool
	endpoints   [4][3]runs
}

var bc6hModeList = []bc6hMode{
	{
		code: 0, modeBits: 2, wBits: 10, deltaBits: [3]uint{5, 5, 5}, transformed: true, twoSubsets: true,
		endpoints: [4][3]runs{
			{{low(5, 10)}, {low(15, 10)}, {low(25, 10)}},
			{{low(35, 5)}, {low(45, 5)}, {low(55, 5)}},
			{{low(65, 5)}, {low(41, 4), run(2, 1, 4)}, {low(61, 4), run(3, 1, 4)}},
			{{low(71, 5)}, {low(51, 4), run(40, 1, 4)}, {low(50, 1), run(60, 1, 1), run(70, 1, 2), run(76, 1, 3), run(4, 1, 4)}},
		},
	},
	{
		code: 1, modeBits: 2, wBits: 7, deltaBits: [3]uint{6, 6, 6}, transformed: true, twoSubsets: true,
		endpoints: [4][3]runs{
			{{low(5, 7)}, {low(15, 7)}, {low(25, 7)}},
			{{low(35, 6)}, {low(45, 6)}, {low(55, 6)}},
			{{low(65, 6)}, {low(41, 4), run(24, 1, 4), run(2, 1, 5)}, {low(61, 4), run(14, 1, 4), run(22, 1, 5)}},
			{{low(71, 6)}, {low(51, 4), run(3, 2, 4)}, {low(12, 2), run(23, 1, 2), run(32, 1, 3), run(34, 1, 4), run(33, 1, 5)}},
		},
	},
	{
		code: 2, modeBits: 5, wBits: 11, deltaBits: [3]uint{5, 4, 4}, transformed: true, twoSubsets: true,
		endpoints: [4][3]runs{
			{{low(5, 10), run(40, 1, 10)}, {low(15, 10), run(49, 1, 10)}, {low(25, 10), run(59, 1, 10)}},
			{{low(35, 5)}, {low(45, 4)}, {low(55, 4)}},
			{{low(65, 5)}, {low(41, 4)}, {low(61, 4)}},
			{{low(71, 5)}, {low(51, 4)}, {low(50, 1), run(60, 1, 1), run(70, 1, 2), run(76, 1, 3)}},
		},
	},
	{
		code: 6, modeBits: 5, wBits: 11, deltaBits: [3]uint{4, 5, 4}, transformed: true, twoSubsets: true,
		endpoints: [4][3]runs{
			{{low(5, 10), run(39, 1, 10)}, {low(15, 10), run(50, 1, 10)}, {low(25, 10), run(59, 1, 10)}},
			{{low(35, 4)}, {low(45, 5)}, {low(55, 4)}},
			{{low(65, 4)}, {low(41, 4), run(75, 1, 4)}, {low(61, 4)}},
			{{low(71, 4)}, {low(51, 4), run(40, 1, 4)}, {low(69, 1), run(60, 1, 1), run(70, 1, 2), run(76, 1, 3)}},
		},
	},
	{
		code: 10, modeBits: 5, wBits: 11, deltaBits: [3]uint{4, 4, 5}, transformed: true, twoSubsets: true,
		endpoints: [4][3]runs{
			{{low(5, 10), run(39, 1, 10)}, {low(15, 10), run(49, 1, 10)}, {low(25, 10), run(60, 1, 10)}},
			{{low(35, 4)}, {low(45, 4)}, {low(55, 5)}},
			{{low(65, 4)}, {low(41, 4)}, {low(61, 4), run(40, 1, 4)}},
			{{low(71, 4)}, {low(51, 4)}, {low(50, 1), run(69, 1, 1), run(70, 1, 2), run(76, 1, 3), run(75, 1, 4)}},
		},
	},
	{
		code: 14, modeBits: 5, wBits: 9, deltaBits: [3]uint{5, 5, 5}, transformed: true, twoSubsets: true,
		endpoints: [4][3]runs{
			{{low(5, 9)}, {low(15, 9)}, {low(25, 9)}},
			{{low(35, 5)}, {low(45, 5)}, {low(55, 5)}},
			{{low(65, 5)}, {low(41, 4), run(24, 1, 4)}, {low(61, 4), run(14, 1, 4)}},
			{{low(71, 5)}, {low(51, 4), run(40, 1, 4)}, {low(50, 1), run(60, 1, 1), run(70, 1, 2), run(76, 1, 3), run(34, 1, 4)}},
		},
	},
	{
		code: 18, modeBits: 5, wBits: 8, deltaBits: [3]uint{6, 5, 5}, transformed: true, twoSubsets: true,
		endpoints: [4][3]runs{
			{{low(5, 8)}, {low(15, 8)}, {low(25, 8)}},
			{{low(35, 6)}, {low(45, 5)}, {low(55, 5)}},
			{{low(65, 6)}, {low(41, 4), run(24, 1, 4)}, {low(61, 4), run(14, 1, 4)}},
			{{low(71, 6)}, {low(51, 4), run(13, 1, 4)}, {low(50, 1), run(60, 1, 1), run(23, 1, 2), run(33, 1, 3), run(34, 1, 4)}},
		},
	},
	{
		code: 22, modeBits: 5, wBits: 8, deltaBits: [3]uint{5, 6, 5}, transformed: true, twoSubsets: true,
		endpoints: [4][3]runs{
			{{low(5, 8)}, {low(15, 8)}, {low(25, 8)}},
			{{low(35, 5)}, {low(45, 6)}, {low(55, 5)}},
			{{low(65, 5)}, {low(41, 4), run(24, 1, 4), run(23, 1, 5)}, {low(61, 4), run(14, 1, 4)}},
			{{low(71, 5)}, {low(51, 4), run(40, 1, 4), run(33, 1, 5)}, {low(13, 1), run(60, 1, 1), run(70, 1, 2), run(76, 1, 3), run(34, 1, 4)}},
		},
	},
	{
		code: 26, modeBits: 5, wBits: 8, deltaBits: [3]uint{5, 5, 6}, transformed: true, twoSubsets: true,
		endpoints: [4][3]runs{
			{{low(5, 8)}, {low(15, 8)}, {low(25, 8)}},
			{{low(35, 5)}, {low(45, 5)}, {low(55, 6)}},
			{{low(65, 5)}, {low(41, 4), run(24, 1, 4)}, {low(61, 4), run(14, 1, 4), run(23, 1, 5)}},
			{{low(71, 5)}, {low(51, 4), run(40, 1, 4)}, {low(50, 1), run(13, 1, 1), run(70, 1, 2), run(76, 1, 3), run(34, 1, 4), run(33, 1, 5)}},
		},
	},
	{
		code: 30, modeBits: 5, wBits: 6, twoSubsets: true,
		endpoints: [4][3]runs{
			{{low(5, 6)}, {low(15, 6)}, {low(25, 6)}},
			{{low(35, 6)}, {low(45, 6)}, {low(55, 6)}},
			{{low(65, 6)}, {low(41, 4), run(24, 1, 4), run(21, 1, 5)}, {low(61, 4), run(14, 1, 4), run(22, 1, 5)}},
			{{low(71, 6)}, {low(51, 4), run(11, 1, 4), run(31, 1, 5)}, {low(12, 2), run(23, 1, 2), run(32, 1, 3), run(34, 1, 4), run(33, 1, 5)}},
		},
	},
	{
		code: 3, modeBits: 5, wBits: 10,
		endpoints: [4][3]runs{
			{{low(5, 10)}, {low(15, 10)}, {low(25, 10)}},
			{{low(35, 10)}, {low(45, 10)}, {low(55, 10)}},
		},
	},
	{
		code: 7, modeBits: 5, wBits: 11, deltaBits: [3]uint{9, 9, 9}, transformed: true,
		endpoints: [4][3]runs{
			{{low(5, 10), run(44, 1, 10)}, {low(15, 10), run(54, 1, 10)}, {low(25, 10), run(64, 1, 10)}},
			{{low(35, 9)}, {low(45, 9)}, {low(55, 9)}},
		},
	},
	{
		code: 11, modeBits: 5, wBits: 12, deltaBits: [3]uint{8, 8, 8}, transformed: true,
		endpoints: [4][3]runs{
			{
				{low(5, 10), run(44, 1, 10), run(43, 1, 11)},
				{low(15, 10), run(54, 1, 10), run(53, 1, 11)},
				{low(25, 10), run(64, 1, 10), run(63, 1, 11)},
			},
			{{low(35, 8)}, {low(45, 8)}, {low(55, 8)}},
		},
	},
	{
		code: 15, modeBits: 5, wBits: 16, deltaBits: [3]uint{4, 4, 4}, transformed: true,
		endpoints: [4][3]runs{
			{
				// high bits are stored in reverse order
				{low(5, 10), run(44, 1, 10), run(43, 1, 11), run(42, 1, 12), run(41, 1, 13), run(40, 1, 14), run(39, 1, 15)},
				{low(15, 10), run(54, 1, 10), run(53, 1, 11), run(52, 1, 12), run(51, 1, 13), run(50, 1, 14), run(49, 1, 15)},
				{low(25, 10), run(64, 1, 10), run(63, 1, 11), run(62, 1, 12), run(61, 1, 13), run(60, 1, 14), run(59, 1, 15)},
			},
			{{low(35, 4)}, {low(45, 4)}, {low(55, 4)}},
		},
	},
}

// bc6hModes indexes bc6hModeList by 5-bit mode code. Reserved codes are nil.
var bc6hModes = func() (modes [32]*bc6hMode) {
	for i := range bc6hModeList {
		m := &bc6hModeList[i]
		modes[m.code] = m
	}
	return modes
}()

// endpointCount is 2 for single-subset modes and 4 otherwise.
func (m *bc6hMode) endpointCount() int {
	if m.twoSubsets {
		return 4
	}
	return 2
}
