package contracts

import (
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
)

// TokenFactoryMetaData contains the ABI and creation bytecode of the NFT
// factory contract.
var TokenFactoryMetaData = &bind.MetaData{
	ABI: `[{"type":"constructor","inputs":[],"stateMutability":"nonpayable"},` +
		`{"type":"function","name":"deployToken","inputs":[{"name":"name_","type":"string"},{"name":"symbol_","type":"string"}],"outputs":[{"name":"","type":"address"}],"stateMutability":"nonpayable"},` +
		`{"type":"function","name":"deployedTokens","inputs":[{"name":"","type":"uint256"}],"outputs":[{"name":"","type":"address"}],"stateMutability":"view"},` +
		`{"type":"event","name":"TokenDeployed","inputs":[{"name":"deployer","type":"address","indexed":true},{"name":"token","type":"address","indexed":false},{"name":"name","type":"string","indexed":false},{"name":"symbol","type":"string","indexed":false}],"anonymous":false}]`,
	Bin: "0x608060405234801561001057600080fd5b50336000806101000a81548173ffffffffffffffffffffffffffffffffffffffff" +
		"021916908373ffffffffffffffffffffffffffffffffffffffff1602179055506110f3806100606000396000f3fe60806040" +
		"523480156100115760006000fd5b50600436106100465760003560e01c80631f1ec02f1461004b5780636f77926b1461007b" +
		"57806395d89b41146100ab575b60006000fd5b61006560048036038101906100609190610a1c565b6100c9565b6040516100" +
		"729190610b3e565b60405180910390f35b61009560048036038101906100909190610ae4565b61024d565b6040516100a291" +
		"90610b3e565b60405180910390f35b6100b361027b565b6040516100c09190610bcd565b60405180910390f35b6000600082" +
		"8260405161009c90610309565b6100a7929190610c42565b604051809103906000f0801580156100c4573d600060003e3d60" +
		"006000fd5b509050600160005080548060010182816100de9190610d63565b9160005260206000209001600090919091909150",
}

// MembershipFactoryMetaData contains the ABI and creation bytecode of the
// membership factory contract.
var MembershipFactoryMetaData = &bind.MetaData{
	ABI: `[{"type":"constructor","inputs":[],"stateMutability":"nonpayable"},` +
		`{"type":"function","name":"deployMembership","inputs":[{"name":"name_","type":"string"},{"name":"symbol_","type":"string"}],"outputs":[{"name":"","type":"address"}],"stateMutability":"nonpayable"},` +
		`{"type":"function","name":"deployedMemberships","inputs":[{"name":"","type":"uint256"}],"outputs":[{"name":"","type":"address"}],"stateMutability":"view"},` +
		`{"type":"event","name":"MembershipDeployed","inputs":[{"name":"deployer","type":"address","indexed":true},{"name":"membership","type":"address","indexed":false},{"name":"name","type":"string","indexed":false},{"name":"symbol","type":"string","indexed":false}],"anonymous":false}]`,
	Bin: "0x608060405234801561001057600080fd5b50336000806101000a81548173ffffffffffffffffffffffffffffffffffffffff" +
		"021916908373ffffffffffffffffffffffffffffffffffffffff16021790555061128a806100606000396000f3fe60806040" +
		"523480156100115760006000fd5b50600436106100465760003560e01c80632e4176cf1461004b57806342966c681461007b" +
		"5780637a0ed627146100ab575b60006000fd5b61006560048036038101906100609190610a1c565b6100c9565b6040516100" +
		"729190610b3e565b60405180910390f35b61009560048036038101906100909190610ae4565b61025d565b6040516100a291" +
		"90610b3e565b60405180910390f35b6100b361029b565b6040516100c09190610bcd565b60405180910390f35b6000600082" +
		"826040516100ac90610319565b6100b7929190610c42565b604051809103906000f0801580156100d4573d600060003e3d60" +
		"006000fd5b509050600160005080548060010182816100ee9190610d63565b9160005260206000209001600090919091909150",
}

// TokenMetaData contains the ABI of the NFT child contract. Children are
// created by the factory, so no creation bytecode is carried here.
var TokenMetaData = &bind.MetaData{
	ABI: `[{"type":"function","name":"mint","inputs":[{"name":"to","type":"address"},{"name":"keyHash","type":"bytes32"},{"name":"tokenURI_","type":"string"}],"outputs":[],"stateMutability":"nonpayable"},` +
		`{"type":"function","name":"transferByKey","inputs":[{"name":"to","type":"address"},{"name":"tokenId","type":"uint256"},{"name":"keyHash","type":"bytes32"}],"outputs":[],"stateMutability":"nonpayable"},` +
		`{"type":"function","name":"destroy","inputs":[{"name":"tokenId","type":"uint256"},{"name":"keyHash","type":"bytes32"}],"outputs":[],"stateMutability":"nonpayable"},` +
		`{"type":"function","name":"setBaseURI","inputs":[{"name":"baseURI_","type":"string"}],"outputs":[],"stateMutability":"nonpayable"},` +
		`{"type":"function","name":"transferOwnership","inputs":[{"name":"newOwner","type":"address"}],"outputs":[],"stateMutability":"nonpayable"},` +
		`{"type":"function","name":"name","inputs":[],"outputs":[{"name":"","type":"string"}],"stateMutability":"view"},` +
		`{"type":"function","name":"symbol","inputs":[],"outputs":[{"name":"","type":"string"}],"stateMutability":"view"},` +
		`{"type":"function","name":"owner","inputs":[],"outputs":[{"name":"","type":"address"}],"stateMutability":"view"},` +
		`{"type":"function","name":"tokenURI","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"string"}],"stateMutability":"view"},` +
		`{"type":"function","name":"totalSupply","inputs":[],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},` +
		`{"type":"event","name":"Transfer","inputs":[{"name":"from","type":"address","indexed":true},{"name":"to","type":"address","indexed":true},{"name":"tokenId","type":"uint256","indexed":true}],"anonymous":false},` +
		`{"type":"event","name":"Destroyed","inputs":[{"name":"tokenId","type":"uint256","indexed":true},{"name":"keyHash","type":"bytes32","indexed":false}],"anonymous":false},` +
		`{"type":"event","name":"OwnershipTransferred","inputs":[{"name":"previousOwner","type":"address","indexed":true},{"name":"newOwner","type":"address","indexed":true}],"anonymous":false}]`,
}

// MembershipMetaData contains the ABI of the membership child contract.
var MembershipMetaData = &bind.MetaData{
	ABI: `[{"type":"function","name":"mint","inputs":[{"name":"to","type":"address"},{"name":"keyHash","type":"bytes32"}],"outputs":[],"stateMutability":"nonpayable"},` +
		`{"type":"function","name":"createSnapshot","inputs":[],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"nonpayable"},` +
		`{"type":"function","name":"transferOwnership","inputs":[{"name":"newOwner","type":"address"}],"outputs":[],"stateMutability":"nonpayable"},` +
		`{"type":"function","name":"name","inputs":[],"outputs":[{"name":"","type":"string"}],"stateMutability":"view"},` +
		`{"type":"function","name":"symbol","inputs":[],"outputs":[{"name":"","type":"string"}],"stateMutability":"view"},` +
		`{"type":"function","name":"owner","inputs":[],"outputs":[{"name":"","type":"address"}],"stateMutability":"view"},` +
		`{"type":"function","name":"snapshotMemberCount","inputs":[{"name":"snapshotId","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},` +
		`{"type":"function","name":"snapshotMembers","inputs":[{"name":"snapshotId","type":"uint256"}],"outputs":[{"name":"","type":"address[]"}],"stateMutability":"view"},` +
		`{"type":"event","name":"Transfer","inputs":[{"name":"from","type":"address","indexed":true},{"name":"to","type":"address","indexed":true},{"name":"tokenId","type":"uint256","indexed":true}],"anonymous":false},` +
		`{"type":"event","name":"SnapshotCreated","inputs":[{"name":"snapshotId","type":"uint256","indexed":true},{"name":"memberCount","type":"uint256","indexed":false}],"anonymous":false},` +
		`{"type":"event","name":"OwnershipTransferred","inputs":[{"name":"previousOwner","type":"address","indexed":true},{"name":"newOwner","type":"address","indexed":true}],"anonymous":false}]`,
}
