package registry

// KeyRegistryABI is the interface of the deployed key registry contract
const KeyRegistryABI = `[
  {"inputs":[],"stateMutability":"nonpayable","type":"constructor"},
  {"anonymous":false,"inputs":[
    {"indexed":true,"internalType":"address","name":"wallet","type":"address"},
    {"indexed":false,"internalType":"string","name":"publicKey","type":"string"},
    {"indexed":false,"internalType":"uint256","name":"timestamp","type":"uint256"}],
   "name":"KeysLinked","type":"event"},
  {"anonymous":false,"inputs":[
    {"indexed":true,"internalType":"address","name":"newOwner","type":"address"},
    {"indexed":true,"internalType":"address","name":"addedBy","type":"address"}],
   "name":"OwnerAdded","type":"event"},
  {"anonymous":false,"inputs":[
    {"indexed":true,"internalType":"address","name":"removedOwner","type":"address"},
    {"indexed":true,"internalType":"address","name":"removedBy","type":"address"}],
   "name":"OwnerRemoved","type":"event"},
  {"inputs":[{"internalType":"address","name":"_newOwner","type":"address"}],
   "name":"addOwner","outputs":[],"stateMutability":"nonpayable","type":"function"},
  {"inputs":[{"internalType":"address","name":"_walletAddress","type":"address"}],
   "name":"getLinkTimestamp","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],
   "stateMutability":"view","type":"function"},
  {"inputs":[{"internalType":"address","name":"_walletAddress","type":"address"}],
   "name":"getPrivateKey","outputs":[{"internalType":"string","name":"","type":"string"}],
   "stateMutability":"view","type":"function"},
  {"inputs":[{"internalType":"address","name":"_walletAddress","type":"address"}],
   "name":"getPublicKey","outputs":[{"internalType":"string","name":"","type":"string"}],
   "stateMutability":"view","type":"function"},
  {"inputs":[{"internalType":"address","name":"_walletAddress","type":"address"}],
   "name":"hasLinkedKeys","outputs":[{"internalType":"bool","name":"","type":"bool"}],
   "stateMutability":"view","type":"function"},
  {"inputs":[{"internalType":"address","name":"_address","type":"address"}],
   "name":"isOwner","outputs":[{"internalType":"bool","name":"","type":"bool"}],
   "stateMutability":"view","type":"function"},
  {"inputs":[
    {"internalType":"string","name":"_privateKey","type":"string"},
    {"internalType":"string","name":"_publicKey","type":"string"}],
   "name":"linkKeys","outputs":[],"stateMutability":"nonpayable","type":"function"},
  {"inputs":[
    {"internalType":"address","name":"_walletAddress","type":"address"},
    {"internalType":"string","name":"_privateKey","type":"string"},
    {"internalType":"string","name":"_publicKey","type":"string"}],
   "name":"linkKeysForAddress","outputs":[],"stateMutability":"nonpayable","type":"function"},
  {"inputs":[{"internalType":"address","name":"_owner","type":"address"}],
   "name":"removeOwner","outputs":[],"stateMutability":"nonpayable","type":"function"}
]`
